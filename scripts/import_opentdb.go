// Manual Open Trivia DB import.
//
// The import is also reachable through POST /api/admin/import; this script is
// for first deployments or reseeding a fresh database from the command line.
//
// Usage: go run scripts/import_opentdb.go [category]
// With no argument every known category is imported.

package main

import (
	"log"
	"os"

	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/pkg/database"
	"lumen_quiz_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	quizService := service.NewQuizService(quizRepo, nil)
	importer := service.NewImportService(userRepo, quizService, cfg)

	if len(os.Args) > 1 {
		category := os.Args[1]
		log.Printf("Importing category %q...", category)
		quiz, err := importer.ImportCategory(category)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Done, created quiz %d (%s)", quiz.ID, quiz.Title)
		return
	}

	log.Println("Importing all categories...")
	quizzes, err := importer.ImportAll()
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Done, created %d quizzes", len(quizzes))
}
