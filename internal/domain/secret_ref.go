package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrInvalidProfileName = errors.New("invalid profile name")
	ErrInvalidSecretRef   = errors.New("invalid secret reference")
)

const (
	secretRefPrefix = "internode/"
	secretRefSuffix = "/password"
)

// SecretRef is the secret store key holding the password of a profile.
func SecretRef(name ProfileName) string {
	return secretRefPrefix + string(name) + secretRefSuffix
}

// ParseSecretRef returns the profile owning key, which must have the form
// internode/<profile>/password.
func ParseSecretRef(key string) (ProfileName, error) {
	rest, hasPrefix := strings.CutPrefix(key, secretRefPrefix)
	name, hasSuffix := strings.CutSuffix(rest, secretRefSuffix)
	if !hasPrefix || !hasSuffix {
		return "", fmt.Errorf("%w %q: want %s<profile>%s", ErrInvalidSecretRef, key, secretRefPrefix, secretRefSuffix)
	}

	profile := ProfileName(name)
	if err := ValidateProfileName(profile); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidSecretRef, key, err)
	}

	return profile, nil
}

// ValidateProfileName accepts names usable as one path segment in both the
// file store and pass.
func ValidateProfileName(name ProfileName) error {
	raw := string(name)
	switch {
	case strings.TrimSpace(raw) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidProfileName)
	case strings.TrimSpace(raw) != raw:
		return fmt.Errorf("%w %q: surrounding whitespace", ErrInvalidProfileName, raw)
	case raw == "." || raw == "..":
		return fmt.Errorf("%w %q", ErrInvalidProfileName, raw)
	case strings.ContainsAny(raw, `/\`):
		return fmt.Errorf("%w %q: contains a path separator", ErrInvalidProfileName, raw)
	case strings.IndexFunc(raw, unicode.IsControl) >= 0:
		return fmt.Errorf("%w %q: contains a control character", ErrInvalidProfileName, raw)
	}

	return nil
}
