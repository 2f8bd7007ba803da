package features

import (
	"time"

	"github.com/stopcast/stopcast/pkg/dataset"
	"github.com/stopcast/stopcast/pkg/regressor"
)

// FieldNames is the fixed model input schema, in order.
var FieldNames = []string{"hour", "minute", "day", "day_of_week", "stop_id"}

// Instance is one labelled model input. TimeOfDay only exists for reporting
// and is never part of Features.
type Instance struct {
	TimeOfDay string
	Target    float64
	Features  []float64
}

func Schema() regressor.Schema {
	return regressor.Schema{Fields: FieldNames}
}

// ForStop builds the labelled instance sequence for one stop column. Rows
// where the stop has no observation are dropped entirely. The day feature
// counts whole days since the earliest retained timestamp of this stop only,
// so sparse stops that start late still begin at day 0.
func ForStop(table *dataset.Table, stopIndex int) []Instance {
	var instances []Instance
	var firstTimestamp time.Time

	for _, row := range table.Rows {
		if row.Values[stopIndex] == nil {
			continue
		}

		if firstTimestamp.IsZero() || row.Timestamp.Before(firstTimestamp) {
			firstTimestamp = row.Timestamp
		}
	}

	for _, row := range table.Rows {
		value := row.Values[stopIndex]
		if value == nil {
			continue
		}

		dayOffset := int(row.Timestamp.Sub(firstTimestamp) / (24 * time.Hour))

		instances = append(instances, Instance{
			TimeOfDay: row.Timestamp.Format("15:04:05"),
			Target:    *value,
			Features: []float64{
				float64(row.Timestamp.Hour()),
				float64(row.Timestamp.Minute()),
				float64(dayOffset),
				float64(mondayIndexedWeekday(row.Timestamp.Weekday())),
				float64(stopIndex),
			},
		})
	}

	return instances
}

// mondayIndexedWeekday maps Go's Sunday=0 convention onto Monday=0..Sunday=6,
// matching the weekday encoding the models were originally trained with.
func mondayIndexedWeekday(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}
