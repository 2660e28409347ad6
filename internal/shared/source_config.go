package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"play_reviews/internal/domain"
)

// LoadSourceConfig reads the connector configuration. A file whose first
// non-blank byte is '{' is JSON; anything else is YAML.
func LoadSourceConfig(path string) (domain.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseSourceConfig(b)
}

func ParseSourceConfig(b []byte) (domain.Config, error) {
	var cfg domain.Config
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '{' {
		if err := json.Unmarshal(t, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parse json config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse yaml config: %w", err)
	}
	return cfg, nil
}
