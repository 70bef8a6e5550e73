// Package render turns merged days into chart panels. Each day becomes
// one go-chart time chart with the glucose trace, the shaded target
// band, sleep and workout bands and meal labels; the statistics panel
// and the dashboard header are drawn directly onto RGBA images.
package render
