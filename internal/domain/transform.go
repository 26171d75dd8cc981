package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidReading is matched by *ValidationError.
var ErrInvalidReading = errors.New("invalid reading")

var validate = newValidator()

// newValidator reports field errors by their JSON names so messages line up
// with the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed range or presence checks.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid reading: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidReading }

// ParseRawEvent deserializes a RawEvent's value into a SensorReading.
// The sensor id falls back to the message key and the observation time to
// the message timestamp. The reading is not validated.
func ParseRawEvent(raw RawEvent) (SensorReading, error) {
	var r SensorReading
	if err := json.Unmarshal(raw.Value, &r); err != nil {
		return SensorReading{}, fmt.Errorf("parse raw event: %w", err)
	}

	r.SensorID = strings.TrimSpace(r.SensorID)
	if r.SensorID == "" {
		r.SensorID = string(raw.Key)
	}
	if r.ObservedAt.IsZero() {
		r.ObservedAt = raw.Timestamp
	}
	if !r.ObservedAt.IsZero() {
		r.ObservedAt = r.ObservedAt.UTC()
	}
	r.MaterialType = normalizeMaterialType(r.MaterialType)
	r.RawPayload = raw.Value

	return r, nil
}

// ValidateReading checks presence and physical ranges of the reading fields.
// It does not require two known quantities; the solver reports that.
func ValidateReading(r SensorReading) error {
	return Validate(r)
}

// Validate runs the struct's validate tags and collects every failure into a
// *ValidationError. Other request types that carry reading fields use it so
// their messages match.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Message: describeFieldError(fe)}
	}
	return &ValidationError{Fields: fields}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// normalizeMaterialType lower-cases and trims a material key. Unknown keys are
// kept; profile lookup falls back to the general profile.
func normalizeMaterialType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// generateID produces a deterministic ID from the reading's identity and the
// profile it was scored against. Replaying the same reading yields the same
// ID, so downstream consumers can upsert.
func generateID(sensorID string, observedAt time.Time, materialKey string) string {
	input := fmt.Sprintf("%s|%s|%s", sensorID, observedAt.UTC().Format(time.RFC3339Nano), materialKey)
	hash := sha256.Sum256([]byte(input))
	return materialKey + "-" + hex.EncodeToString(hash[:8])
}
