package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a context value as a string for comparison.
// Numbers use the shortest decimal form, so 3 and 3.0 compare equal.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// ValuesEqual reports whether two context values are equal ignoring case.
func ValuesEqual(a, b any) bool {
	return strings.EqualFold(FormatValue(a), FormatValue(b))
}
