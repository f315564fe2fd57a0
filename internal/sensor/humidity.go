package sensor

import "math"

// AbsoluteHumidity converts temperature (°C) and relative humidity (%) to
// absolute humidity in g/m^3 using the Magnus approximation of saturation
// vapour pressure.
func AbsoluteHumidity(tempC, relHumidity float64) float64 {
	svp := 6.112 * math.Exp(17.67*tempC/(tempC+243.5)) // hPa
	return svp * relHumidity * 2.1674 / (273.15 + tempC)
}
