package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadYAMLFile reads a YAML config file and flattens it into env-style keys.
// Nested maps join with "_", so analysis.provider becomes ANALYSIS_PROVIDER.
func loadYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(k), "-", "_"))
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, scalar(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		default:
			out[key] = scalar(val)
		}
	}
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
