// Command rescan re-runs the text extractor over completed, unconfirmed text
// scans so stored results pick up extractor improvements.
// Usage: go run ./cmd/rescan
package main

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medvault/internal/config"
	"medvault/internal/logging"
	"medvault/internal/parser/insurance"
	"medvault/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("rescan failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(cfg.Log, cfg.Server.Environment)
	log := logging.Worker

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	scanRepo := postgres.NewCardScanRepo(db)

	ctx := context.Background()
	afterID := uuid.Nil
	seen, changed := 0, 0

	for {
		scans, err := scanRepo.ListRescanCandidates(ctx, afterID, batchSize)
		if err != nil {
			return fmt.Errorf("listing scans after %s: %w", afterID, err)
		}
		if len(scans) == 0 {
			break
		}

		for i := range scans {
			scan := &scans[i]
			seen++

			card := insurance.Parse(scan.OCRText)
			if reflect.DeepEqual(card, scan.ParsedData) {
				continue
			}

			now := time.Now().UTC()
			scan.ParsedData = card
			scan.ParserModel = "extractor"
			scan.FieldProvenance = nil
			scan.ParsedAt = &now
			if err := scanRepo.UpdateParseResult(ctx, scan); err != nil {
				log.WithField("scan_id", scan.ID).WithError(err).Warn("rescan: update failed")
				continue
			}
			changed++
		}

		afterID = scans[len(scans)-1].ID
		log.WithField("seen", seen).WithField("changed", changed).Info("rescan: progress")
	}

	log.WithField("seen", seen).WithField("changed", changed).Info("rescan: complete")
	return nil
}
