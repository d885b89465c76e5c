package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arnavshah/trip-roster-api/pkg/config"
	"github.com/arnavshah/trip-roster-api/pkg/database"
	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/spf13/cobra"
)

// seedFile is the fixture format read by the seed command
type seedFile struct {
	Trips   []models.Trip   `json:"trips"`
	Signups []models.Signup `json:"signups"`
}

type seedTarget interface {
	SaveTrip(ctx context.Context, t models.Trip) error
	SaveSignup(ctx context.Context, s models.Signup) error
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Load trips and signups into the SQL store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		seed, err := readSeed(f)
		if err != nil {
			return err
		}

		db, err := database.InitDB(cfg.DatabaseURL, cfg.DataPath)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := applySeed(cmd.Context(), database.NewSQLStore(db), seed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d trips and %d signups\n", len(seed.Trips), len(seed.Signups))
		return nil
	},
}

func readSeed(r io.Reader) (seedFile, error) {
	var seed seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return seedFile{}, fmt.Errorf("decode seed file: %w", err)
	}
	for i, t := range seed.Trips {
		if t.ID == "" {
			return seedFile{}, fmt.Errorf("trip %d has no id", i)
		}
	}
	for i, s := range seed.Signups {
		if s.ID == "" {
			return seedFile{}, fmt.Errorf("signup %d has no id", i)
		}
	}
	return seed, nil
}

func applySeed(ctx context.Context, dst seedTarget, seed seedFile) error {
	for _, t := range seed.Trips {
		if err := dst.SaveTrip(ctx, t); err != nil {
			return fmt.Errorf("save trip %s: %w", t.ID, err)
		}
	}
	for _, s := range seed.Signups {
		if err := dst.SaveSignup(ctx, s); err != nil {
			return fmt.Errorf("save signup %s: %w", s.ID, err)
		}
	}
	return nil
}
