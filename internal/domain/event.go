package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/collection-climate-etl/internal/psychro"
	"github.com/couchcryptid/collection-climate-etl/internal/risk"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SensorReading is one environmental-monitor sample as published by the
// collector. Any two of the four quantities are enough to assess it.
type SensorReading struct {
	SensorID     string    `json:"sensor_id" validate:"required,max=128"`
	Site         string    `json:"site,omitempty" validate:"max=256"`
	MaterialType string    `json:"material_type,omitempty" validate:"max=64"`
	ObservedAt   time.Time `json:"observed_at"`

	// Temperatures and dew point are °F, humidity is %RH, absolute humidity
	// is g/m³.
	Temperature      *float64 `json:"temperature,omitempty" validate:"omitempty,gte=-40,lte=120"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	DewPoint         *float64 `json:"dew_point,omitempty" validate:"omitempty,gte=-40,lte=100"`
	AbsoluteHumidity *float64 `json:"absolute_humidity,omitempty" validate:"omitempty,gte=0,lte=100"`

	// 24-hour swings, ± around the mean.
	TempSwing *float64 `json:"temp_swing_24h,omitempty" validate:"omitempty,gte=0,lte=20"`
	RHSwing   *float64 `json:"rh_swing_24h,omitempty" validate:"omitempty,gte=0,lte=30"`

	RawPayload []byte `json:"-"`
}

// Input returns the psychrometric quantities of the reading.
func (r SensorReading) Input() psychro.Input {
	return psychro.Input{
		Temperature:      r.Temperature,
		RelativeHumidity: r.RelativeHumidity,
		DewPoint:         r.DewPoint,
		AbsoluteHumidity: r.AbsoluteHumidity,
	}
}

// Material identifies the profile an assessment was scored against.
type Material struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Overall is the weakest of the four axis ratings.
type Overall struct {
	Axis       risk.Axis       `json:"axis"`
	Score      int             `json:"score"`
	Rating     string          `json:"rating"`
	ColorClass risk.ColorClass `json:"color_class"`
}

// ClimateAssessment is the domain-rich result published to the sink topic.
type ClimateAssessment struct {
	ID         string    `json:"id"`
	SensorID   string    `json:"sensor_id"`
	Site       string    `json:"site,omitempty"`
	Material   Material  `json:"material"`
	ObservedAt time.Time `json:"observed_at"`

	State      psychro.State  `json:"state"`
	Method     psychro.Method `json:"solve_method"`
	Iterations int            `json:"solve_iterations"`
	Converged  bool           `json:"converged"`

	Risk        risk.Assessment         `json:"risk"`
	Overall     Overall                 `json:"overall"`
	Fluctuation *risk.FluctuationReport `json:"fluctuation,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
