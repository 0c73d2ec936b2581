package mcpserver

import "fmt"

// stringArray extracts a required []string argument from a raw arguments map,
// rejecting anything that isn't an array of strings.
func stringArray(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// optionalStringArray is stringArray without the required-field error.
func optionalStringArray(args map[string]any, key string) []string {
	out, err := stringArray(args, key)
	if err != nil {
		return nil
	}
	return out
}

// stringMap extracts an optional map[string]string argument (e.g. envs).
func stringMap(args map[string]any, key string) map[string]string {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// mergeEnvs layers overlay on top of base, overlay winning on key conflicts.
func mergeEnvs(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// int64Array extracts a required []int64 argument (e.g. pids), tolerant of
// JSON numbers decoding as float64.
func int64Array(args map[string]any, key string) ([]int64, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of integers", key)
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of integers", key)
		}
		out = append(out, int64(n))
	}
	return out, nil
}
