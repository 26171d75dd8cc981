// Command genmock reads a data-logger CSV export and generates the JSON
// fixtures used by the pipeline tests and the validate command. It runs the
// real assessment code so the expected output matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/sensor_readings.csv \
//	  -readings-out data/mock/sensor_readings.json \
//	  -assessments-out data/mock/climate_assessments.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/jonboulle/clockwork"
)

// fixtureTime is the processed_at stamped on generated assessments. The
// validate command uses the same instant.
var fixtureTime = time.Date(2024, time.November, 4, 15, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "data-logger CSV export")
	readingsOut := flag.String("readings-out", "", "output path for the sensor readings JSON fixture")
	assessmentsOut := flag.String("assessments-out", "", "optional output path for the expected assessments JSON")
	flag.Parse()

	if *csvPath == "" || *readingsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -readings-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	readings, err := readCSV(*csvPath)
	if err != nil {
		return err
	}
	log.Printf("read %d readings from %s", len(readings), *csvPath)

	assessor := domain.NewAssessor(nil, nil, "")
	assessments := make([]domain.ClimateAssessment, 0, len(readings))
	for _, r := range readings {
		a, err := assessor.Assess(r)
		if err != nil && !errors.Is(err, psychro.ErrConvergenceFailure) {
			return fmt.Errorf("assess %s: %w", r.SensorID, err)
		}
		if err != nil {
			log.Printf("%s: %v", r.SensorID, err)
		}
		assessments = append(assessments, a)
	}

	if err := writeJSON(*readingsOut, readings); err != nil {
		return fmt.Errorf("writing readings fixture: %w", err)
	}
	log.Printf("wrote readings fixture: %s", *readingsOut)

	if *assessmentsOut != "" {
		if err := writeJSON(*assessmentsOut, assessments); err != nil {
			return fmt.Errorf("writing assessments fixture: %w", err)
		}
		log.Printf("wrote assessments fixture: %s", *assessmentsOut)
	}

	printStats(assessments)
	return nil
}

func readCSV(path string) ([]domain.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	readings, err := domain.ReadCSVReadings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type count struct {
	name string
	n    int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].name < out[j].name
	})
	return out
}

func printCounts(label string, m map[string]int) {
	fmt.Printf("%s:", label)
	for _, c := range sortedCounts(m) {
		fmt.Printf(" %s=%d", c.name, c.n)
	}
	fmt.Println()
}

func printStats(assessments []domain.ClimateAssessment) {
	materials := map[string]int{}
	overall := map[string]int{}
	methods := map[string]int{}
	axes := map[string]int{}
	fluctuation := map[string]int{}
	var unconverged int

	for i := range assessments {
		a := &assessments[i]
		materials[a.Material.Key]++
		overall[string(a.Overall.ColorClass)]++
		methods[string(a.Method)]++
		axes[string(a.Overall.Axis)]++
		if a.Fluctuation != nil {
			fluctuation[string(a.Fluctuation.Status)]++
		}
		if !a.Converged {
			unconverged++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(assessments))
	fmt.Printf("Unconverged: %d\n", unconverged)
	printCounts("By material", materials)
	printCounts("By overall rating", overall)
	printCounts("By weakest axis", axes)
	printCounts("By solve method", methods)
	printCounts("By fluctuation status", fluctuation)

	fmt.Println("\nPer reading:")
	for i := range assessments {
		a := &assessments[i]
		fmt.Printf("  %-10s %-18s T=%5.1f RH=%5.1f DP=%5.1f AH=%5.2f  %s %d (%s)\n",
			a.SensorID, a.Material.Key,
			a.State.Temperature, a.State.RelativeHumidity, a.State.DewPoint, a.State.AbsoluteHumidity,
			a.Overall.Axis, a.Overall.Score, a.Overall.Rating)
	}
}
