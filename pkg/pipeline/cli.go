package pipeline

import (
	"github.com/urfave/cli/v2"

	"github.com/stopcast/stopcast/pkg/dataset"
	"github.com/stopcast/stopcast/pkg/web_api"
)

func RegisterCLI() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "profile",
			Usage: "path of a yaml run profile",
		},
		&cli.StringFlag{
			Name:    "dataset",
			Usage:   "path of a local dataset csv",
			EnvVars: []string{"STOPCAST_DATASET_PATH"},
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to download the dataset from when no local copy exists",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "max instances evaluated per stop, 0 for unrestricted",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed for stochastic models",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "model variant: tree or ensemble",
		},
		&cli.IntFlag{
			Name:  "ensemble-size",
			Usage: "member count for the ensemble model",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "stops evaluated concurrently",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "directory the per-stop prediction csvs are written to",
		},
	}

	return &cli.Command{
		Name:  "predict",
		Usage: "Run the per-stop passenger count prediction pipeline",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "evaluate every stop and write per-stop prediction csvs",
				Flags: flags,
				Action: func(c *cli.Context) error {
					profile, results, err := run(c)
					if err != nil {
						return err
					}

					return WriteReports(profile.OutputDir, results)
				},
			},
			{
				Name:  "serve",
				Usage: "evaluate every stop and serve the results over http",
				Flags: append(flags, &cli.StringFlag{
					Name:  "listen",
					Value: ":8080",
					Usage: "listen target for the web server",
				}),
				Action: func(c *cli.Context) error {
					profile, results, err := run(c)
					if err != nil {
						return err
					}

					if err := WriteReports(profile.OutputDir, results); err != nil {
						return err
					}

					summaries := make([]web_api.StopSummary, 0, len(results))
					for _, stopResult := range results {
						summary := web_api.StopSummary{
							StopID:   stopResult.StopID,
							StopName: stopResult.StopName,
							Records:  stopResult.Result.Records,
						}

						if stopResult.Err != nil {
							summary.Error = stopResult.Err.Error()
						}

						if mae, ok := stopResult.Result.MAE(); ok {
							summary.MAE = &mae
						}

						summaries = append(summaries, summary)
					}

					return web_api.SetupServer(c.String("listen"), summaries)
				},
			},
		},
	}
}

func run(c *cli.Context) (Profile, []StopResult, error) {
	profile, err := buildProfile(c)
	if err != nil {
		return profile, nil, err
	}

	table, err := dataset.Load(profile.DatasetPath, profile.DatasetURL)
	if err != nil {
		return profile, nil, err
	}

	return profile, RunAll(table, profile), nil
}

func buildProfile(c *cli.Context) (Profile, error) {
	profile := DefaultProfile()

	if profilePath := c.String("profile"); profilePath != "" {
		var err error
		if profile, err = LoadProfile(profilePath); err != nil {
			return profile, err
		}
	}

	if c.IsSet("dataset") {
		profile.DatasetPath = c.String("dataset")
	}
	if c.IsSet("url") {
		profile.DatasetURL = c.String("url")
	}
	if c.IsSet("limit") {
		profile.Limit = c.Int("limit")
	}
	if c.IsSet("seed") {
		profile.RandomSeed = c.Int64("seed")
	}
	if c.IsSet("model") {
		profile.Model = c.String("model")
	}
	if c.IsSet("ensemble-size") {
		profile.EnsembleSize = c.Int("ensemble-size")
	}
	if c.IsSet("workers") {
		profile.Workers = c.Int("workers")
	}
	if c.IsSet("output-dir") {
		profile.OutputDir = c.String("output-dir")
	}

	return profile, profile.Validate()
}
