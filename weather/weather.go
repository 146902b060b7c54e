// Package weather holds the derived-metric math for the station.
package weather

// DewPointC approximates the dew point in °C from temperature (°C) and
// relative humidity (%). Linear approximation, not thermodynamically exact;
// adequate for hobby-grade reporting.
func DewPointC(tempC, humidity float32) float32 {
	return tempC - (100-humidity)/5
}

// Fahrenheit converts °C to °F.
func Fahrenheit(c float32) float32 { return c*9/5 + 32 }
