package repository

import (
	"github.com/dgaponov99/practicum-my-blog/internal/database"

	"gorm.io/gorm"
)

// readDB routes read-only queries to the replica when one is configured.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}
