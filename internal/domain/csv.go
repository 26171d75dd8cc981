package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVColumns is the header of the logger export format, in column order.
var CSVColumns = []string{
	"sensor_id", "site", "material_type", "observed_at",
	"temperature", "relative_humidity", "dew_point", "absolute_humidity",
	"temp_swing_24h", "rh_swing_24h",
}

// ReadCSVReadings parses a logger export into readings. Columns are matched
// by header name; empty cells leave the quantity unknown. Rows are not
// validated.
func ReadCSVReadings(r io.Reader) ([]SensorReading, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("read csv: no data rows")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx["sensor_id"]; !ok {
		return nil, fmt.Errorf("read csv: missing sensor_id column")
	}

	out := make([]SensorReading, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		reading := SensorReading{
			SensorID:     get("sensor_id"),
			Site:         get("site"),
			MaterialType: normalizeMaterialType(get("material_type")),
		}
		if ts := get("observed_at"); ts != "" {
			t, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return nil, fmt.Errorf("line %d: observed_at: %w", line, err)
			}
			reading.ObservedAt = t.UTC()
		}

		for _, f := range []struct {
			col string
			dst **float64
		}{
			{"temperature", &reading.Temperature},
			{"relative_humidity", &reading.RelativeHumidity},
			{"dew_point", &reading.DewPoint},
			{"absolute_humidity", &reading.AbsoluteHumidity},
			{"temp_swing_24h", &reading.TempSwing},
			{"rh_swing_24h", &reading.RHSwing},
		} {
			v, err := optionalFloat(get(f.col))
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.col, err)
			}
			*f.dst = v
		}
		out = append(out, reading)
	}
	return out, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
