package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"study-assistant/internal/shared/telemetry"
)

// loadConfigFile reads a flat YAML mapping of env-style keys, e.g.
//
//	OBJECT_STORE: minio
//	UPLOAD_MAX_BYTES: 10485760
func loadConfigFile(path string) map[string]string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		telemetry.Warn("config.file_unreadable", map[string]any{"path": path, "error": err})
		return nil
	}
	values, err := parseConfigFile(raw)
	if err != nil {
		telemetry.Warn("config.file_invalid", map[string]any{"path": path, "error": err})
		return nil
	}
	return values
}

func parseConfigFile(raw []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make(map[string]string, len(doc))
	for key, val := range doc {
		switch v := val.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[strings.ToUpper(key)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return out, nil
}
