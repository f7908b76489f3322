package db

import (
	"log"

	"prompt-sharing-service/internal/domain"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.Prompt{},
		&domain.ShareLink{},
		&domain.Collaborator{},
		&domain.PromptVersion{},
		&domain.ShareActivity{},
		&domain.ShareNotification{},
		&domain.PromptComment{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}
