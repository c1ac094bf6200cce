package schedule

import "fmt"

// HeatmapColorFunc maps a utilization value within [min, max] to a CSS
// color.  The engine calls it per grid cell with the cell's overlap count.
type HeatmapColorFunc func(value, min, max float64) string

// Heatmap ramp breakpoints.  The ramp intentionally is not a linear hue
// sweep: the lower half only darkens the yellow (lightness 88% -> 50% at a
// fixed hue) and the upper half shifts the hue toward orange/red at fixed
// lightness, so low utilization stays visually light for longer.
const (
	heatHueLow        = 52.0 // hue held through the lower half of intensity
	heatHueHigh       = 33.0 // hue reached at full intensity
	heatLightnessLow  = 88.0 // lightness at zero intensity, percent
	heatLightnessHigh = 50.0 // lightness from half intensity onward, percent
)

// Default reference range for scaling overlap counts into heat intensity.
const (
	HeatRefMin = 0.0
	HeatRefMax = 30.0
)

// Fixed cell colors used ahead of the heatmap ramp.
const (
	colorBlocked      = "#d1d5db" // gray: outside every availability window
	colorOverCapacity = "#fecaca" // light red: starting here would exceed capacity
	colorPreview      = "#60a5fa" // blue: inside the live hover preview
)

// DefaultHeatmapColor is the standard two-segment utilization ramp.  Values
// at or below min render light yellow; values at or above max render deep
// orange-red.
func DefaultHeatmapColor(value, min, max float64) string {
	intensity := (value - min) / (max - min)
	if intensity <= 0.5 {
		lightness := heatLightnessLow - intensity*2*(heatLightnessLow-heatLightnessHigh)
		return fmt.Sprintf("hsl(%.0f, 100%%, %.0f%%)", heatHueLow, lightness)
	}
	scaled := (intensity - 0.5) * 2 // map 0.5..1 onto 0..1
	hue := heatHueLow - scaled*(heatHueLow-heatHueHigh)
	return fmt.Sprintf("hsl(%.0f, 100%%, %.0f%%)", hue, heatLightnessHigh)
}
