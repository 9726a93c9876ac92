package application

import (
	"math"
	"strings"

	"taskbridge-mcp-server/internal/domain"
)

// getStringParam extracts a string parameter from the arguments map.
// An absent or null parameter yields "" unless required.
func getStringParam(args map[string]interface{}, name string, required bool) (string, error) {
	value, exists := args[name]
	if !exists || value == nil {
		if required {
			return "", domain.NewValidationError("missing required parameter: %s", name)
		}
		return "", nil
	}

	strValue, ok := value.(string)
	if !ok {
		return "", domain.NewValidationError("parameter %s must be a string", name)
	}

	if required && strings.TrimSpace(strValue) == "" {
		return "", domain.NewValidationError("missing required parameter: %s", name)
	}

	return strValue, nil
}

// getStringParamDefault returns the parameter or def when it is absent or empty.
func getStringParamDefault(args map[string]interface{}, name, def string) (string, error) {
	value, err := getStringParam(args, name, false)
	if err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}

// getIntParam extracts a positive integer parameter, falling back to def
// when it is absent or null.
func getIntParam(args map[string]interface{}, name string, def int) (int, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return def, nil
	}

	var n int
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, domain.NewValidationError("parameter %s must be a whole number, got %v", name, v)
		}
		if v >= float64(math.MaxInt) || v <= float64(math.MinInt) {
			return 0, domain.NewValidationError("parameter %s is out of range", name)
		}
		n = int(v)
	case int:
		n = v
	default:
		return 0, domain.NewValidationError("parameter %s must be an integer", name)
	}

	if n <= 0 {
		return 0, domain.NewValidationError("parameter %s must be a positive integer", name)
	}
	return n, nil
}

// getStringSliceParam extracts an array of strings. A single comma-separated
// string is accepted as well.
func getStringSliceParam(args map[string]interface{}, name string) ([]string, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case []string:
		return v, nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, domain.NewValidationError("parameter %s must be an array of strings", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.NewValidationError("parameter %s must be an array of strings", name)
	}
}
