package dataset

import (
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Manage the passenger count dataset",
		Subcommands: []*cli.Command{
			{
				Name:  "download",
				Usage: "download the dataset to a local file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Value: DefaultSourceURL,
						Usage: "source url for the dataset csv",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "dataset.csv",
						Usage: "file to write the dataset to",
					},
				},
				Action: func(c *cli.Context) error {
					return downloadToFile(c.String("url"), c.String("output"))
				},
			},
			{
				Name:  "inspect",
				Usage: "print summary information about a local dataset",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Usage:    "path of the dataset csv",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					table, err := LoadFile(c.String("path"))
					if err != nil {
						return err
					}

					for index, stopName := range table.StopNames {
						observed := 0
						for _, row := range table.Rows {
							if row.Values[index] != nil {
								observed += 1
							}
						}

						log.Info().
							Int("stop_id", index).
							Str("stop", stopName).
							Int("observations", observed).
							Msg("Stop column")
					}

					return nil
				},
			},
		},
	}
}

func downloadToFile(url string, output string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cli.Exit("Request failed for "+url, 1)
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return err
	}

	log.Info().Str("output", output).Int64("bytes", written).Msg("Dataset downloaded")

	return nil
}
