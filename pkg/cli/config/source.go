package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Source types
const (
	SourceCSV       = "csv"
	SourceS3        = "s3"
	SourceSQLite    = "sqlite"
	SourceFirestore = "firestore"
)

// Source holds configuration of where the dataset rows are read from
type Source struct {
	Type string
	Path string

	S3Bucket   string
	S3Key      string
	S3Region   string
	S3Endpoint string

	SQLiteTable string

	Firestore Firestore
}

// Flags returns CLI flags for Source configuration
func (s *Source) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source-type",
			Usage:       "Dataset source (csv, s3, sqlite, firestore)",
			Category:    "Dataset",
			Value:       SourceCSV,
			Sources:     cli.EnvVars("SUISTAT_SOURCE_TYPE"),
			Destination: &s.Type,
		},
		&cli.StringFlag{
			Name:        "source-path",
			Aliases:     []string{"d"},
			Usage:       "CSV file path or http(s) URL, or SQLite database path",
			Category:    "Dataset",
			Value:       "data/suicide.csv",
			Sources:     cli.EnvVars("SUISTAT_SOURCE_PATH"),
			Destination: &s.Path,
		},
		&cli.StringFlag{
			Name:        "s3-bucket",
			Usage:       "S3 bucket holding the dataset CSV",
			Category:    "S3",
			Sources:     cli.EnvVars("SUISTAT_S3_BUCKET"),
			Destination: &s.S3Bucket,
		},
		&cli.StringFlag{
			Name:        "s3-key",
			Usage:       "S3 object key of the dataset CSV",
			Category:    "S3",
			Sources:     cli.EnvVars("SUISTAT_S3_KEY"),
			Destination: &s.S3Key,
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "AWS region",
			Category:    "S3",
			Sources:     cli.EnvVars("SUISTAT_S3_REGION", "AWS_REGION"),
			Destination: &s.S3Region,
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "Custom S3 endpoint for S3 compatible storage",
			Category:    "S3",
			Sources:     cli.EnvVars("SUISTAT_S3_ENDPOINT"),
			Destination: &s.S3Endpoint,
		},
		&cli.StringFlag{
			Name:        "sqlite-table",
			Usage:       "SQLite table holding dataset rows",
			Category:    "SQLite",
			Value:       "suicide",
			Sources:     cli.EnvVars("SUISTAT_SQLITE_TABLE"),
			Destination: &s.SQLiteTable,
		},
	}
	return append(flags, s.Firestore.Flags()...)
}

// Validate validates the source configuration
func (s *Source) Validate() error {
	switch s.Type {
	case SourceCSV, SourceSQLite:
		if s.Path == "" {
			return goerr.New("source path is required", goerr.V("type", s.Type))
		}
	case SourceS3:
		if s.S3Bucket == "" || s.S3Key == "" {
			return goerr.New("s3 bucket and key are required",
				goerr.V("bucket", s.S3Bucket),
				goerr.V("key", s.S3Key))
		}
	case SourceFirestore:
		if !s.Firestore.IsConfigured() {
			return goerr.New("firestore project is required")
		}
	default:
		return goerr.New("invalid source type", goerr.V("type", s.Type))
	}
	return nil
}

// Configure creates the tabular source
func (s *Source) Configure(ctx context.Context) (interfaces.TabularSource, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Debug("Configuring dataset source", "source", s)

	switch s.Type {
	case SourceS3:
		src, err := repository.NewS3Source(ctx, s.S3Bucket, s.S3Key, s.S3Region, s.S3Endpoint)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init s3 source")
		}
		return src, nil

	case SourceSQLite:
		src, err := repository.NewSQLite(ctx, s.Path, s.SQLiteTable)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init sqlite source")
		}
		return src, nil

	case SourceFirestore:
		return s.Firestore.Configure(ctx)

	default:
		return repository.NewCSVSource(s.Path), nil
	}
}

// LogValue returns structured log value
func (s Source) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", s.Type)}
	switch s.Type {
	case SourceS3:
		attrs = append(attrs,
			slog.String("bucket", s.S3Bucket),
			slog.String("key", s.S3Key),
			slog.String("region", s.S3Region),
			slog.String("endpoint", s.S3Endpoint))
	case SourceSQLite:
		attrs = append(attrs, slog.String("path", s.Path), slog.String("table", s.SQLiteTable))
	case SourceFirestore:
		attrs = append(attrs, slog.Any("firestore", s.Firestore))
	default:
		attrs = append(attrs, slog.String("path", s.Path))
	}
	return slog.GroupValue(attrs...)
}
