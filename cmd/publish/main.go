package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Dan9191/loan-approval/internal/artifact"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

var (
	manifestFlag = &cli.StringFlag{
		Name:     "manifest",
		Usage:    "Path to the model manifest",
		Required: true,
	}

	dbFlag = &cli.StringFlag{
		Name:    "db",
		Usage:   "PostgreSQL connection string",
		Sources: cli.EnvVars("DB_CONN"),
	}

	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Validate the artifact without publishing it",
	}
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cmd := &cli.Command{
		Name:  "publish",
		Usage: "Validate a model artifact and store it in PostgreSQL",
		Flags: []cli.Flag{manifestFlag, dbFlag, dryRunFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return publish(ctx, c, logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("Publish failed: %v", err)
	}
}

func publish(ctx context.Context, c *cli.Command, logger *logrus.Logger) error {
	path := c.String(manifestFlag.Name)
	manifest, pmml, err := artifact.ReadFiles(path)
	if err != nil {
		return err
	}
	bundle, err := artifact.Decode(manifest, pmml)
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{
		"name":        bundle.Name,
		"version":     bundle.Version,
		"fingerprint": bundle.Fingerprint,
	})
	log.Info("Artifact is valid")

	if c.Bool(dryRunFlag.Name) {
		return nil
	}

	dsn := c.String(dbFlag.Name)
	if dsn == "" {
		return fmt.Errorf("--db or DB_CONN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rec := &artifact.Record{
		Name:        bundle.Name,
		Version:     bundle.Version,
		Manifest:    manifest,
		PMML:        pmml,
		Fingerprint: bundle.Fingerprint,
	}
	if err := artifact.NewRepository(db).Publish(ctx, rec); err != nil {
		return err
	}
	log.WithField("created_at", rec.CreatedAt).Info("Artifact published")
	return nil
}
