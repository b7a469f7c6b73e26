package service

import (
	"context"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"
)

// storageError translates a repository error into an AppError. A missing row
// becomes NOT_FOUND for resource/id; anything else is internal.
func storageError(err error, resource string, id uint) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// EventPublisher delivers domain events on a best-effort basis.
type EventPublisher interface {
	PublishAsync(ctx context.Context, eventType string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(context.Context, string, any) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
