package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/teamsmell/schema"
)

// Define the regular expression to capture "N [units]".
var windowRe = regexp.MustCompile(`^(\d+)\s*(year|month|week|day)s?$`)

// ParseWindow converts strings like "3 months" or "30 days" into a batch window.
func ParseWindow(s string) (schema.Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	matches := windowRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return schema.Window{}, fmt.Errorf("invalid batch width '%s'. expected 'N years|months|weeks|days'", s)
	}

	// 1: Value (e.g., "2")
	// 2: Unit (e.g., "year" or "month")
	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return schema.Window{}, fmt.Errorf("invalid batch width '%s': %w", s, err)
	}
	if value == 0 {
		return schema.Window{}, fmt.Errorf("batch width must be greater than zero")
	}

	switch matches[2] {
	case "year":
		return schema.Window{Months: 12 * value}, nil
	case "month":
		return schema.Window{Months: value}, nil
	case "week":
		return schema.Window{Days: 7 * value}, nil
	default: // day
		return schema.Window{Days: value}, nil
	}
}
