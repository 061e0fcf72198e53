package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when coercing strings to dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"2006-01",
}

// currencyReplacer strips currency symbols and thousands separators before
// numeric parsing.
var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// AsFloat converts a cell to a float64. Strings are parsed after stripping
// currency symbols and separators. Returns false for nil or unparsable cells.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := currencyReplacer.Replace(strings.TrimSpace(x))
		if s == "" {
			return 0, false
		}
		// Percentages come through as "12.5%".
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		if percent {
			f /= 100
		}
		return f, true
	default:
		return 0, false
	}
}

// AsTime converts a cell to a time.Time, trying the known layouts for
// strings. Returns false for nil or unparsable cells.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// AsString converts a cell to its string form. Nil becomes the empty string.
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

// AsBool converts a cell to a boolean, accepting the usual textual forms.
// Returns false (second value) for nil or unrecognized cells.
func AsBool(v any) (bool, bool) {
	switch x := v.(type) {
	case nil:
		return false, false
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case int:
		return x != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true", "t", "1", "y", "on":
			return true, true
		case "no", "false", "f", "0", "n", "off":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// Elements returns the cell as a list of scalars: list-valued cells are
// returned as-is, scalars become a one-element list, nil becomes empty.
// Consumers that need "does any element match" semantics iterate this.
func Elements(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
