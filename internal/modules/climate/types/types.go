package types

type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StationActivity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Observations int    `json:"observations"`
}

type PrecipitationObservation struct {
	Date string `json:"date"`
	// Precipitation is null when the station did not report rainfall.
	Precipitation *float64 `json:"precipitation"`
}

type TemperatureObservation struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
}

// TemperatureStats holds store-computed aggregates in degrees Fahrenheit.
type TemperatureStats struct {
	Min float64 `json:"TMIN"`
	Avg float64 `json:"TAVG"`
	Max float64 `json:"TMAX"`
}

// DateSpan is the first and latest observation date, both yyyy-mm-dd.
type DateSpan struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Window is the inclusive trailing-year range [Start, End] ending at the latest observation.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
