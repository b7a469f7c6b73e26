package database

import "github.com/dgaponov99/practicum-my-blog/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Post{},
		&models.PostTag{},
		&models.Comment{},
	}
}
