package psychro

import "math"

// Magnus-formula coefficients over water (Alduchov & Eskridge style constants).
const (
	magnusA = 17.27
	magnusB = 237.7 // °C

	// saturationPressureAt0C is the saturation vapour pressure at 0 °C in Pa.
	saturationPressureAt0C = 610.78

	waterMolarMass = 18.016 // g/mol
	gasConstant    = 8.314  // J/(mol·K)
	kelvinOffset   = 273.15
)

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// magnusGamma is the exponent term 17.27·T/(237.7+T) shared by every formula
// in this file.
func magnusGamma(tempC float64) float64 {
	return magnusA * tempC / (magnusB + tempC)
}

// invertGamma solves magnusGamma(T) = g for T in °C.
func invertGamma(g float64) float64 {
	return magnusB * g / (magnusA - g)
}

// SaturationVaporPressure returns the saturation vapour pressure in Pa for a
// temperature in °C.
func SaturationVaporPressure(tempC float64) float64 {
	return saturationPressureAt0C * math.Exp(magnusGamma(tempC))
}

// ActualVaporPressure returns the partial pressure of water vapour in Pa.
func ActualVaporPressure(tempF, rh float64) float64 {
	return SaturationVaporPressure(FahrenheitToCelsius(tempF)) * rh / 100
}

// DewPoint returns the dew point in °F for an air temperature in °F and a
// relative humidity in percent. The result is not finite when rh <= 0.
func DewPoint(tempF, rh float64) float64 {
	g := magnusGamma(FahrenheitToCelsius(tempF)) + math.Log(rh/100)
	return CelsiusToFahrenheit(invertGamma(g))
}

// RelativeHumidity returns the relative humidity in percent for an air
// temperature and dew point in °F. The value is not clamped: a dew point above
// the air temperature yields more than 100.
func RelativeHumidity(tempF, dewPointF float64) float64 {
	num := math.Exp(magnusGamma(FahrenheitToCelsius(dewPointF)))
	den := math.Exp(magnusGamma(FahrenheitToCelsius(tempF)))
	return num / den * 100
}

// AbsoluteHumidity returns the water vapour density in g/m³ using the ideal
// gas law.
func AbsoluteHumidity(tempF, rh float64) float64 {
	tempK := FahrenheitToCelsius(tempF) + kelvinOffset
	return ActualVaporPressure(tempF, rh) * waterMolarMass / (gasConstant * tempK)
}

// TemperatureFromDewPointAndRH is the inverse of DewPoint: it returns the air
// temperature in °F at which the given dew point corresponds to rh percent.
func TemperatureFromDewPointAndRH(dewPointF, rh float64) float64 {
	g := magnusGamma(FahrenheitToCelsius(dewPointF)) - math.Log(rh/100)
	return CelsiusToFahrenheit(invertGamma(g))
}
