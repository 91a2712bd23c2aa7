package util

import "github.com/asecurityteam/rolling"

func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}

// GetWindowAvg returns the average of all points in the window, or 0 if it is empty
func GetWindowAvg(window *rolling.PointPolicy) float64 {
	return window.Reduce(func(w rolling.Window) float64 {
		sum := 0.0
		count := 0
		for _, bucket := range w {
			for _, value := range bucket {
				sum += value
				count++
			}
		}
		if count == 0 {
			return 0
		}
		return sum / float64(count)
	})
}

// GetWindowMax returns the largest point in the window, or 0 if it is empty
func GetWindowMax(window *rolling.PointPolicy) float64 {
	return window.Reduce(func(w rolling.Window) float64 {
		var values []float64
		for _, bucket := range w {
			values = append(values, bucket...)
		}
		return Max(values)
	})
}
