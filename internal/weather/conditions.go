package weather

var descriptions = map[int]string{
	0:  "Clear Sky",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime Fog",
	51: "Light Drizzle",
	53: "Drizzle",
	55: "Dense Drizzle",
	61: "Light Rain",
	63: "Rain",
	65: "Heavy Rain",
	80: "Showers",
	81: "Heavy Showers",
	95: "Thunderstorm",
}

// Describe returns the text description of a WMO condition code, or
// "Unknown" for codes outside the table.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown"
}
