package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/cli/config"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
	"github.com/secmon-lab/suistat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCountries() *cli.Command {
	var sourceCfg config.Source

	return &cli.Command{
		Name:  "countries",
		Usage: "List countries in the dataset with their year range",
		Flags: sourceCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			src, err := sourceCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			options := usecase.NewOptions(usecase.NewDashboard(model.DefaultDashboardConfig(), dataset.NewCache(src), nil, nil))
			countries, err := options.Countries(ctx)
			if err != nil {
				return err
			}

			for _, country := range countries {
				years, err := options.Years(ctx, country)
				if err != nil {
					return err
				}
				line := country
				if len(years) > 0 {
					line = fmt.Sprintf("%s\t%d-%d", country, years[0], years[len(years)-1])
				}
				if _, err := fmt.Fprintln(os.Stdout, line); err != nil {
					return goerr.Wrap(err, "failed to print country")
				}
			}
			return nil
		},
	}
}
