package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/stopcast/stopcast/pkg/dataset"
	"github.com/stopcast/stopcast/pkg/pipeline"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("STOPCAST_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("STOPCAST_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "stopcast",
		Description: "Online passenger count prediction for bus stops",

		Commands: []*cli.Command{
			dataset.RegisterCLI(),
			pipeline.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
