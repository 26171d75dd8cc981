// Package risk scores how an environment threatens a collection along four
// independent decay mechanisms.
//
// # Axes
//
// Natural aging is driven by temperature. Three regimes apply:
//
//	cold storage profiles:   ≤40°F excellent | ≤50 acceptable | ≤65 high | else critical
//	critical/very-high:      ≤min+2 excellent | ≤max good | ≤max+3 fair | ≤max+6 high | else critical
//	everything else:         <min excellent | ≤max good | ≤72 fair | ≤76 moderate | ≤80 high | else critical
//
// Mechanical decay is driven by relative humidity. Critical RH bounds on a
// profile short-circuit to a score of 15. Dry-storage profiles use a fixed
// ladder at 15/35/50 %RH. Otherwise readings inside the optimal range score
// excellent within a quarter of the range width from its midpoint and good
// elsewhere; outside the range the deviation is bucketed at 5/10/15 points.
//
// Mold growth combines RH with a temperature gate on the top three tiers
// (70/70, 65/65, 60/60) and falls back to pure RH tiers at 55/45/35. Below
// 35 %RH the score depends on profile sensitivity and whether the air is very
// dry (<25 %RH).
//
// Metal corrosion keys off dew point. Profiles with critical corrosion
// priority also require RH to stay under a ceiling for each tier, with a
// stricter ladder for dry-storage metals.
//
// # Scores
//
// Every axis returns a score in 0–100 (higher is safer), a rating label and
// a colour class from a fixed seven-colour palette. The axes never consult
// each other; Assessment.Overall reports the weakest one.
//
// # Fluctuation
//
// AnalyzeFluctuation checks 24-hour temperature and RH swings against the
// Bizot protocol (±10 %RH) and tighter limits for materials whose mechanical
// decay priority is very-high or critical.
package risk
