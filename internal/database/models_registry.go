package database

import "nestaway/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Review{},
	}
}
