// Package domain models environmental-monitor readings from collection
// storage spaces and the climate assessments derived from them.
//
// # Data Source
//
// Data loggers in stacks, vaults and display cases report periodically. The
// upstream collector normalizes each sample to JSON and publishes it to the
// Kafka source topic, keyed by sensor id:
//
//	{"sensor_id":"vault-2-east","site":"Archive Annex","material_type":"paper",
//	 "observed_at":"2024-11-04T14:00:00Z","temperature":65,"relative_humidity":40,
//	 "temp_swing_24h":1.5,"rh_swing_24h":3}
//
// # Reading Conventions
//
// Units:
//
//	temperature, dew_point    °F
//	relative_humidity         % (0–100)
//	absolute_humidity         g/m³
//	temp_swing_24h            ±°F over the last 24 hours
//	rh_swing_24h              ±%RH over the last 24 hours
//
// Any two of the four psychrometric quantities are enough. Loggers that
// record a dew point instead of RH, or an absolute humidity from a chilled
// mirror, are handled the same way; the remaining two are solved.
//
// Accepted ranges (inclusive):
//
//	temperature        -40 … 120
//	relative_humidity    0 … 100
//	dew_point          -40 … 100
//	absolute_humidity    0 … 100
//	temp_swing_24h       0 … 20
//	rh_swing_24h         0 … 30
//
// Missing values:
//
//	An absent sensor_id falls back to the Kafka message key. An absent
//	observed_at falls back to the message timestamp. An absent or unknown
//	material_type is scored against the configured default material, and
//	unknown keys resolve to the general profile.
//
// # Assessment
//
// The solved state is rounded to display precision (one decimal for
// temperature, RH and dew point, two for absolute humidity) before scoring,
// so the published numbers reproduce the published ratings. The overall
// rating is the weakest of the four decay axes.
//
// A reading whose state cannot be solved to tolerance is still assessed from
// the solver's best estimate with converged=false; see [Assessor.Assess].
//
// Sink messages carry three headers: material_type (resolved profile key),
// overall_rating (colour class of the weakest axis) and processed_at
// (RFC 3339).
//
// # ID Generation
//
// Assessment IDs are "<material>-<hash>" where hash is the first 8 bytes of
// SHA-256 over sensor_id|observed_at|material. Reprocessing the same reading
// against the same profile yields the same ID. See [generateID].
package domain
