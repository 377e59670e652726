package models

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration affiche une durée en secondes sous la forme "1h 5m" ou "12m"
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int(seconds) / 60
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatDate affiche une date courte, par exemple "Jan 17, 2025"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}
