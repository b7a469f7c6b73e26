package database

import (
	"testing"

	modelspkg "github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesPostTag(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.PostTag); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include PostTag")
}
