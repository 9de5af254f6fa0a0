package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rcliao/learning-tracker/internal/model"
)

// parseContext turns key=value pairs into an event context. Values that
// parse as a number, boolean or null keep that type; anything else is
// a string.
func parseContext(pairs []string) (model.Context, error) {
	ctx := model.Context{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid context %q, want key=value", p)
		}
		ctx[k] = parseScalar(strings.TrimSpace(v))
	}
	return ctx, nil
}

func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
