package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations creates the indexes AutoMigrate does not declare.
func RunMigrations(db *gorm.DB) error {
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	// Answer history is listed newest first
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_logs_time
		ON answer_logs(query_time)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_logs_verdict
		ON answer_logs(case_id, verdict)
	`).Error; err != nil {
		return err
	}

	return nil
}
