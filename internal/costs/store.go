package costs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StorageKey names the single persisted entry holding the running total.
const StorageKey = "nicole-studio-total-cost"

// Store persists the running total. Load returns 0 with a nil error when no
// value has been saved yet.
type Store interface {
	Load() (float64, error)
	Save(total float64) error
}

func formatTotal(total float64) string {
	return strconv.FormatFloat(total, 'f', 6, 64)
}

func parseTotal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse stored total %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("stored total %q is not a non-negative number", raw)
	}
	return v, nil
}
