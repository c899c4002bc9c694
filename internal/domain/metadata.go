package domain

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	metadataBoolFields = []string{"excess-charged", "excess-restrict-access", "excess-shaped"}
	metadataIntFields  = []string{"id", "quota"}
)

// ServiceMetadata maps each child element of the service node to its text.
// Values are string, nil (element without text), bool or int64 after Coerce.
type ServiceMetadata map[string]any

// Coerce converts the known boolean and integer fields in place. A boolean
// field is true only when its text is exactly "yes".
func (m ServiceMetadata) Coerce() error {
	for _, key := range metadataBoolFields {
		raw, ok := m[key]
		if !ok {
			continue
		}
		text, _ := raw.(string)
		m[key] = text == "yes"
	}

	for _, key := range metadataIntFields {
		raw, ok := m[key]
		if !ok {
			continue
		}
		text, _ := raw.(string)
		value, err := ParseCount(text)
		if err != nil {
			return fmt.Errorf("service field %q: %w", key, err)
		}
		m[key] = value
	}

	return nil
}

func (m ServiceMetadata) String(key string) (string, bool) {
	value, ok := m[key].(string)
	return value, ok
}

func (m ServiceMetadata) Int(key string) (int64, bool) {
	value, ok := m[key].(int64)
	return value, ok
}

func (m ServiceMetadata) Bool(key string) bool {
	value, _ := m[key].(bool)
	return value
}

// ParseCount parses a non-negative base-10 integer such as a byte count.
func ParseCount(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty numeric value", ErrSchema)
	}

	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric value %q", ErrSchema, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrSchema, value)
	}

	return value, nil
}
