// @title Lumen Quiz API
// @version 1.0
// @description Backend for the Lumen quiz platform: quiz authoring, question-by-question play, XP and levels.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"lumen_quiz_backend/internal/app"
	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/pkg/configwatcher"
	"lumen_quiz_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "force database migration on startup, even in release mode")
	importCategory := flag.String("import", "", "import a trivia category and exit (\"all\" for every category)")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	if *importCategory != "" {
		if err := application.RunImport(*importCategory); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Println("Import completed, exiting")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", application.OnConfigReload)

	application.Run()
}
