package ui

import (
	"github.com/guptarohit/asciigraph"
)

// PlotSeries renders one or more series into a single graph, the first series
// is drawn blue and the second one red.
func PlotSeries(caption string, width int, series ...[]float64) string {
	return asciigraph.PlotMany(series,
		asciigraph.Height(15),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}
