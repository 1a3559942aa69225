package models

import "gorm.io/gorm"

func AutoMigrateAll(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Admin{},
		&ChatSession{},
		&ChatMessage{},
		&Game{},
		&TopupItem{},
		&Order{},
		&Transaction{},
	)
	if err != nil {
		return err
	}
	return nil
}
