package freshness

import (
	"strconv"
	"strings"
	"time"
)

// Status classifies how long an item has been sitting in the pantry.
type Status string

const (
	StatusFresh    Status = "fresh"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Default thresholds applied when a category does not carry its own.
const (
	DefaultAgingDays  = 7
	DefaultUrgentDays = 14
)

// LowStockThreshold is the inclusive upper bound for the low-stock flag.
const LowStockThreshold = 2

// AgeDays returns the whole number of days elapsed since addedAt, never negative.
func AgeDays(addedAt time.Time, now time.Time) int {
	if addedAt.After(now) {
		return 0
	}
	return int(now.Sub(addedAt).Hours() / 24)
}

// StatusOf classifies an item's age against the given thresholds.
// critical when age >= urgentDays, warning when age >= agingDays, fresh otherwise.
func StatusOf(addedAt time.Time, now time.Time, agingDays, urgentDays int) Status {
	age := AgeDays(addedAt, now)
	switch {
	case age >= urgentDays:
		return StatusCritical
	case age >= agingDays:
		return StatusWarning
	default:
		return StatusFresh
	}
}

// Badge returns the user-facing badge text for a status; fresh has no badge.
func Badge(s Status) string {
	switch s {
	case StatusWarning:
		return "Aging"
	case StatusCritical:
		return "Urgent"
	}
	return ""
}

// LowStock reports whether a quantity string denotes a running-low amount:
// it must parse to a finite number q with 0 < q <= LowStockThreshold.
// Missing or non-numeric quantities are never low-stock, and neither are
// zero or negative ones.
func LowStock(quantity string) bool {
	q, err := strconv.ParseFloat(strings.TrimSpace(quantity), 64)
	if err != nil {
		return false
	}
	return q > 0 && q <= LowStockThreshold
}
