package db

import (
	"fmt"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Lecture{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
