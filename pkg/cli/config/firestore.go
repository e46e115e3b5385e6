package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Firestore holds configuration of a Firestore collection holding dataset rows
type Firestore struct {
	ProjectID  string
	DatabaseID string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (f *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID for Firestore",
			Category:    "Firestore",
			Sources:     cli.EnvVars("SUISTAT_FIRESTORE_PROJECT"),
			Destination: &f.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Firestore",
			Value:       "(default)",
			Sources:     cli.EnvVars("SUISTAT_FIRESTORE_DATABASE"),
			Destination: &f.DatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection holding one document per dataset row",
			Category:    "Firestore",
			Value:       "suicide_rows",
			Sources:     cli.EnvVars("SUISTAT_FIRESTORE_COLLECTION"),
			Destination: &f.Collection,
		},
	}
}

// Configure connects to the collection
func (f *Firestore) Configure(ctx context.Context) (*repository.Firestore, error) {
	if !f.IsConfigured() {
		return nil, goerr.New("firestore project is required")
	}

	repo, err := repository.NewFirestore(ctx, f.ProjectID, f.DatabaseID, f.Collection)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init firestore",
			goerr.V("project", f.ProjectID),
			goerr.V("database", f.DatabaseID),
			goerr.V("collection", f.Collection),
		)
	}

	return repo, nil
}

// IsConfigured checks if Firestore is properly configured
func (f *Firestore) IsConfigured() bool {
	return f.ProjectID != ""
}

// LogValue returns structured log value
func (f Firestore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project", f.ProjectID),
		slog.String("database", f.DatabaseID),
		slog.String("collection", f.Collection),
	)
}
