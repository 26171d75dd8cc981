// Command validate performs end-to-end integrity checks across the mock data
// fixtures: the data-logger CSV export, the sensor readings JSON consumed by
// the pipeline tests, and optionally an expected assessments JSON. It verifies
// row parity, reading validity, assessment reproducibility and the published
// schema constraints.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/sensor_readings.csv \
//	  -readings-json data/mock/sensor_readings.json \
//	  -assessments-json data/mock/climate_assessments.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/collection-climate-etl/internal/domain"
	"github.com/couchcryptid/collection-climate-etl/internal/materials"
	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/couchcryptid/collection-climate-etl/internal/risk"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "data-logger CSV export")
	readingsJSON := flag.String("readings-json", "", "path to the sensor readings JSON fixture")
	assessmentsJSON := flag.String("assessments-json", "", "optional path to the expected assessments JSON")
	flag.Parse()

	if *csvPath == "" || *readingsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *readingsJSON, *assessmentsJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, readingsPath, assessmentsPath string) int {
	// Same instant as genmock so processed_at matches.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.November, 4, 15, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Collection Climate Fixture Validation ===")
	fmt.Println()

	csvReadings, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	jsonReadings, err := loadJSON[domain.SensorReading](readingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load readings JSON: %v\n", err)
		return 1
	}

	recomputed, recomputeErrs := assessAll(jsonReadings)

	phases := []*phase{
		validateParity(csvReadings, jsonReadings),
		validateReadings(jsonReadings, recomputeErrs),
	}

	published := recomputed
	if assessmentsPath != "" {
		expected, err := loadJSON[domain.ClimateAssessment](assessmentsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load assessments JSON: %v\n", err)
			return 1
		}
		phases = append(phases, validateAssessments(expected, recomputed))
		published = expected
	}
	phases = append(phases, validateSchema(published))

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV, %d readings JSON, %d assessments\n",
		len(csvReadings), len(jsonReadings), len(published))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCSV(path string) ([]domain.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.ReadCSVReadings(f)
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// assessAll runs the assessor over every reading. Convergence failures keep
// the best-effort assessment; other errors are returned by index.
func assessAll(readings []domain.SensorReading) ([]domain.ClimateAssessment, map[int]error) {
	assessor := domain.NewAssessor(nil, nil, "")
	out := make([]domain.ClimateAssessment, 0, len(readings))
	errs := map[int]error{}
	for i, r := range readings {
		a, err := assessor.Assess(r)
		if err != nil && !errors.Is(err, psychro.ErrConvergenceFailure) {
			errs[i] = err
			continue
		}
		out = append(out, a)
	}
	return out, errs
}

// ── Phase 1: Parity ──
// The readings JSON must be the CSV export, row for row.

func validateParity(csvReadings, jsonReadings []domain.SensorReading) *phase {
	p := &phase{name: "Phase 1: Parity (CSV vs readings JSON)"}

	if len(csvReadings) != len(jsonReadings) {
		p.errorf("CSV has %d rows, readings JSON has %d", len(csvReadings), len(jsonReadings))
		return p
	}

	opts := cmpopts.IgnoreFields(domain.SensorReading{}, "RawPayload")
	for i := range csvReadings {
		if diff := cmp.Diff(csvReadings[i], jsonReadings[i], opts); diff != "" {
			p.errorf("row %d (%s): CSV and JSON differ (-csv +json):\n%s", i+1, csvReadings[i].SensorID, diff)
		}
	}
	return p
}

// ── Phase 2: Readings ──
// Every reading must pass validation and carry enough inputs to solve.

func validateReadings(readings []domain.SensorReading, assessErrs map[int]error) *phase {
	p := &phase{name: "Phase 2: Readings (validation + solvability)"}

	seen := map[string]int{}
	for i, r := range readings {
		if err := domain.ValidateReading(r); err != nil {
			p.errorf("reading %d (%s): %v", i, r.SensorID, err)
		}
		if known := r.Input().Known(); known < 2 {
			p.errorf("reading %d (%s): only %d known quantities", i, r.SensorID, known)
		}
		if r.ObservedAt.IsZero() {
			p.errorf("reading %d (%s): observed_at is zero", i, r.SensorID)
		}
		if prev, ok := seen[r.SensorID]; ok {
			p.errorf("reading %d: sensor_id %q already used by reading %d", i, r.SensorID, prev)
		}
		seen[r.SensorID] = i
		if err, ok := assessErrs[i]; ok {
			p.errorf("reading %d (%s): assess: %v", i, r.SensorID, err)
		}
	}
	return p
}

// ── Phase 3: Assessments ──
// Re-run the assessment and compare with the expected fixture.

func validateAssessments(expected, recomputed []domain.ClimateAssessment) *phase {
	p := &phase{name: "Phase 3: Assessments (recomputed vs fixture)"}

	byID := make(map[string]*domain.ClimateAssessment, len(expected))
	for i := range expected {
		if expected[i].ID == "" {
			p.errorf("assessment %d: missing ID", i)
			continue
		}
		if _, dup := byID[expected[i].ID]; dup {
			p.errorf("assessment %d: duplicate ID %s", i, expected[i].ID)
			continue
		}
		byID[expected[i].ID] = &expected[i]
	}

	if len(expected) != len(recomputed) {
		p.errorf("fixture has %d assessments, recomputed %d", len(expected), len(recomputed))
	}

	opts := cmp.Options{
		cmpopts.EquateApprox(0, 1e-9),
		cmpopts.EquateEmpty(),
	}
	for i := range recomputed {
		want := &recomputed[i]
		got, ok := byID[want.ID]
		if !ok {
			p.errorf("%s: ID %s not found in assessments JSON", want.SensorID, want.ID)
			continue
		}
		if diff := cmp.Diff(*want, *got, opts); diff != "" {
			p.errorf("ID %s: assessment differs (-recomputed +fixture):\n%s", want.ID, diff)
		}
	}
	return p
}

// ── Phase 4: Schema ──
// Published assessments must satisfy the sink topic contract.

func validateSchema(assessments []domain.ClimateAssessment) *phase {
	p := &phase{name: "Phase 4: Schema (sink contract)"}
	table := materials.Default()
	classes := map[risk.ColorClass]bool{}
	for _, c := range risk.ColorClasses() {
		classes[c] = true
	}

	for i := range assessments {
		checkSchemaRecord(p, i, &assessments[i], table, classes)
	}
	return p
}

func checkSchemaRecord(p *phase, i int, a *domain.ClimateAssessment, table *materials.Table, classes map[risk.ColorClass]bool) {
	pf := func(format string, args ...any) {
		p.errorf("record %d (ID %s): "+format, append([]any{i, a.ID}, args...)...)
	}

	if _, ok := table.Get(a.Material.Key); !ok {
		pf("material %q is not a known profile", a.Material.Key)
	}
	if !strings.HasPrefix(a.ID, a.Material.Key+"-") {
		pf("id doesn't start with material prefix %q-", a.Material.Key)
	}
	if a.SensorID == "" {
		pf("sensor_id is empty")
	}
	if a.ProcessedAt.IsZero() {
		pf("processed_at is zero")
	}

	checkState(pf, a.State)

	lowest := math.MaxInt
	for axis, r := range a.Risk.ByAxis() {
		if r.Score < 0 || r.Score > 100 {
			pf("%s score %d outside 0..100", axis, r.Score)
		}
		if !classes[r.ColorClass] {
			pf("%s color class %q not in palette", axis, r.ColorClass)
		}
		if r.Label == "" {
			pf("%s rating label is empty", axis)
		}
		lowest = min(lowest, r.Score)
	}
	if a.Overall.Score != lowest {
		pf("overall score %d is not the weakest axis score %d", a.Overall.Score, lowest)
	}
	if got := a.Risk.ByAxis()[a.Overall.Axis]; got.Score != a.Overall.Score {
		pf("overall axis %s has score %d, overall says %d", a.Overall.Axis, got.Score, a.Overall.Score)
	}
}

func checkState(pf func(string, ...any), s psychro.State) {
	if s.RelativeHumidity < 0 || s.RelativeHumidity > 100 {
		pf("relative_humidity %g outside 0..100", s.RelativeHumidity)
	}
	if s.DewPoint > s.Temperature+0.1 {
		pf("dew_point %g above temperature %g", s.DewPoint, s.Temperature)
	}
	if s.AbsoluteHumidity < 0 {
		pf("absolute_humidity %g is negative", s.AbsoluteHumidity)
	}
}
