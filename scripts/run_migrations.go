package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/safar/maison-store/internal/config"
	"github.com/safar/maison-store/internal/database"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := database.Direction(os.Args[1])
	if direction != database.DirectionUp && direction != database.DirectionDown {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("connect to database")
	}
	defer db.Close()

	n, err := database.RunMigrations(ctx, db, "migrations", direction)
	if err != nil {
		log.WithError(err).Fatal("run migrations")
	}

	log.Infof("Successfully ran %d migration(s) %s", n, direction)
}
