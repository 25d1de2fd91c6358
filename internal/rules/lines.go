package rules

// DefaultLineColor is used for tour lines missing from LineColors.
const DefaultLineColor = "black"

// LineColors maps Vienna Sightseeing line names to their colors.
var LineColors = map[string]string{
	"Red Line":    "#FF4136",
	"Yellow Line": "#FFDC00",
	"Blue Line":   "#0074D9",
	"Green Line":  "#2ECC40",
	"Grey Line":   "#AAAAAA",
	"Orange Line": "#FF851B",
}

// LineColor returns the color of a tour line.
func LineColor(name string) string {
	if c, ok := LineColors[name]; ok {
		return c
	}
	return DefaultLineColor
}
