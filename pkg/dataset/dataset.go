package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSourceURL is the public SSA stop passenger-count time series the
// pipeline was built around.
const DefaultSourceURL = "https://huggingface.co/datasets/labiaufba/SSA_StopBusTimeSeries_5/raw/main/loader_03-05_2024.csv"

// Table is a wide passenger-count time series. The first CSV column is always
// treated as the timestamp regardless of its header; every other column is one
// stop's counts. A nil cell means the stop had no observation at that time.
type Table struct {
	StopNames []string
	Rows      []Row
}

type Row struct {
	Timestamp time.Time
	Values    []*float64
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Load reads the dataset from path if it exists, otherwise downloads it from
// url. Mirrors the upstream loader behaviour of preferring a local copy.
func Load(path string, url string) (*Table, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		log.Warn().Str("path", path).Msg("Dataset path does not exist, falling back to download")
	}

	return Download(url)
}

func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	log.Info().Str("path", path).Msg("Loading dataset")

	return parse(file)
}

func Download(url string) (*Table, error) {
	log.Info().Str("url", url).Msg("Downloading dataset")

	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset download failed for %s: %s", url, resp.Status)
	}

	return parse(resp.Body)
}

func parse(reader io.Reader) (*Table, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return nil, errors.New("dataset is missing a header row")
	}
	if len(header) < 2 {
		return nil, errors.New("dataset needs a timestamp column and at least one stop column")
	}

	table := &Table{
		StopNames: header[1:],
	}

	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		line += 1

		timestamp, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		values := make([]*float64, len(table.StopNames))
		for column := range table.StopNames {
			cell := ""
			if column+1 < len(record) {
				cell = strings.TrimSpace(record[column+1])
			}

			if cell == "" {
				continue
			}

			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", line, table.StopNames[column], err)
			}
			values[column] = &value
		}

		table.Rows = append(table.Rows, Row{
			Timestamp: timestamp,
			Values:    values,
		})
	}

	log.Info().Int("rows", len(table.Rows)).Int("stops", len(table.StopNames)).Msg("Dataset loaded")

	return table, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range timestampLayouts {
		if timestamp, err := time.Parse(layout, value); err == nil {
			return timestamp, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", value)
}
