package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/cli/config"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/repository"
	"github.com/urfave/cli/v3"
)

// importColumns are the dataset columns copied into databases
var importColumns = []string{
	model.ColumnCountry,
	model.ColumnYear,
	model.ColumnSex,
	model.ColumnAge,
	model.ColumnSuicidesNo,
}

// projectRows keeps only importColumns. The singular count column of older exports is renamed.
func projectRows(rows []model.Row) []model.Row {
	result := make([]model.Row, len(rows))
	for i, row := range rows {
		out := make(model.Row, len(importColumns))
		for _, c := range importColumns {
			out[c] = row[c]
		}
		if _, ok := row[model.ColumnSuicidesNo]; !ok {
			out[model.ColumnSuicidesNo] = row[model.ColumnSuicideNoV1]
		}
		result[i] = out
	}
	return result
}

func cmdImport() *cli.Command {
	var (
		input     string
		sourceCfg config.Source
	)

	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "CSV file path or URL to import",
			Required:    true,
			Destination: &input,
		},
	}, sourceCfg.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Copy a dataset CSV into the SQLite or Firestore source",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			rows, err := repository.NewCSVSource(input).ReadRows(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to read input", goerr.V("input", input))
			}
			rows = projectRows(rows)

			switch sourceCfg.Type {
			case config.SourceSQLite:
				if err := sourceCfg.Validate(); err != nil {
					return err
				}
				db, err := repository.NewSQLite(ctx, sourceCfg.Path, sourceCfg.SQLiteTable)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Import(ctx, importColumns, rows); err != nil {
					return err
				}

			case config.SourceFirestore:
				fs, err := sourceCfg.Firestore.Configure(ctx)
				if err != nil {
					return err
				}
				defer fs.Close()
				if err := fs.Import(ctx, rows, 0); err != nil {
					return err
				}

			default:
				return goerr.New("import destination must be sqlite or firestore", goerr.V("type", sourceCfg.Type))
			}

			logger.Info("Dataset imported",
				slog.Int("rows", len(rows)),
				slog.Any("destination", sourceCfg))
			return nil
		},
	}
}
