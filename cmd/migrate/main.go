package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"medvault/internal/config"
	"medvault/internal/logging"
)

const usage = "Usage: migrate [up|down|steps N|version]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logging.Setup(cfg.Log, cfg.Server.Environment)
	log := logging.Worker

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	m, err := migrate.New("file://db/migrations", cfg.DB.DSN())
	if err != nil {
		log.WithError(err).Fatal("failed to create migrate instance")
	}
	defer func() { _, _ = m.Close() }()

	switch cmd := os.Args[1]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.WithError(err).Fatal("migration up failed")
		}
		log.Info("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.WithError(err).Fatal("migration down failed")
		}
		log.Info("migrations reverted successfully")

	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.WithError(err).Fatal("invalid steps argument")
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.WithError(err).Fatal("migration steps failed")
		}
		log.WithField("steps", n).Info("migration steps applied")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.WithError(err).Fatal("failed to get version")
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}
