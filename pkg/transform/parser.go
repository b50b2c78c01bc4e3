package transform

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when x-transform is malformed.
	ErrInvalidConfig = errors.New("invalid x-transform configuration")

	// ErrInvalidSchemaJSON is returned when the schema document is not valid JSON.
	ErrInvalidSchemaJSON = errors.New("invalid schema JSON")
)

// ExtractConfig parses a schema document and returns both the cleaned
// document (without x-transform) and the transform config. The config is
// nil when the document carries no x-transform key.
func ExtractConfig(doc []byte) (cleaned []byte, config *Config, err error) {
	var docMap map[string]any
	if err := json.Unmarshal(doc, &docMap); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchemaJSON, err)
	}

	if raw, ok := docMap["x-transform"]; ok {
		rawJSON, err := json.Marshal(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to marshal x-transform: %v", ErrInvalidConfig, err)
		}

		config = &Config{}
		if err := json.Unmarshal(rawJSON, config); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}

		if err := config.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	delete(docMap, "x-transform")
	cleaned, err = json.Marshal(docMap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal cleaned schema: %w", err)
	}

	return cleaned, config, nil
}
