package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// WriteReports writes one predictions_stop_<id>.csv per successfully
// evaluated stop into outputDir.
func WriteReports(outputDir string, results []StopResult) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, stopResult := range results {
		if stopResult.Err != nil || len(stopResult.Result.Records) == 0 {
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("predictions_stop_%d.csv", stopResult.StopID))

		if err := writeStopReport(path, stopResult); err != nil {
			return fmt.Errorf("stop %d: %w", stopResult.StopID, err)
		}

		log.Info().Str("path", path).Str("stop", stopResult.StopName).Msg("Saved predictions")
	}

	return nil
}

func writeStopReport(path string, stopResult StopResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalFile(&stopResult.Result.Records, file)
}
