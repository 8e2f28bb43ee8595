// Package validation provides centralized input validation for uplake.
//
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// =============================================================================
// Name Validation
// =============================================================================

// NameRules defines the validation rules for name components.
type NameRules struct {
	MinLength    int
	MaxLength    int
	AllowDots    bool
	AllowHyphens bool
	AllowUnders  bool
}

// DefaultNameRules returns the default rules for name components
// (device class, artifact name).
func DefaultNameRules() NameRules {
	return NameRules{
		MinLength:    1,
		MaxLength:    255,
		AllowDots:    false,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// KeySegmentRules returns rules for object key prefix segments.
func KeySegmentRules() NameRules {
	return NameRules{
		MinLength:    1,
		MaxLength:    255,
		AllowDots:    true,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// ValidateName validates a name according to the given rules.
func ValidateName(name string, rules NameRules) error {
	if len(name) < rules.MinLength {
		return fmt.Errorf("name too short: minimum %d characters required", rules.MinLength)
	}
	if len(name) > rules.MaxLength {
		return fmt.Errorf("name too long: maximum %d characters allowed", rules.MaxLength)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be '.' or '..'")
	}

	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name cannot start with '.'")
	}

	for i, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("name cannot contain control characters at position %d", i)
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("name cannot contain path separators at position %d", i)
		}
		if !isAllowedNameChar(r, rules) {
			return fmt.Errorf("invalid character '%c' at position %d", r, i)
		}
	}

	return nil
}

func isAllowedNameChar(r rune, rules NameRules) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '.':
		return rules.AllowDots
	case '-':
		return rules.AllowHyphens
	case '_':
		return rules.AllowUnders
	}
	return false
}

// ValidateEntityName validates a name component with default rules.
func ValidateEntityName(name string) error {
	return ValidateName(name, DefaultNameRules())
}

// =============================================================================
// Bucket Name Validation
// =============================================================================

var ipLikeName = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// ValidateBucketName validates an S3 bucket name.
//
// Rules follow the store's naming contract: 3-63 characters, lowercase
// letters, digits, hyphens and dots, starting and ending with a letter or
// digit, no consecutive dots, and not formatted like an IP address.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return fmt.Errorf("bucket name must be 3-63 characters, got %d", len(bucket))
	}

	for i, r := range bucket {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '.':
		default:
			return fmt.Errorf("invalid character '%c' in bucket name at position %d", r, i)
		}
	}

	first := bucket[0]
	last := bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return fmt.Errorf("bucket name must start and end with a letter or digit")
	}

	if strings.Contains(bucket, "..") {
		return fmt.Errorf("bucket name cannot contain consecutive dots")
	}

	if ipLikeName.MatchString(bucket) {
		return fmt.Errorf("bucket name cannot be formatted like an IP address")
	}

	return nil
}

// =============================================================================
// Object Key Validation
// =============================================================================

// ValidateKeyPrefix validates a slash-separated object key prefix.
//
// The prefix must not start or end with a slash; each segment follows
// KeySegmentRules.
func ValidateKeyPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("key prefix cannot be empty")
	}

	if strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("key prefix cannot start with '/'")
	}
	if strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("key prefix cannot end with '/'")
	}

	rules := KeySegmentRules()
	for _, segment := range strings.Split(prefix, "/") {
		if segment == "" {
			return fmt.Errorf("key prefix cannot contain empty segments")
		}
		if err := ValidateName(segment, rules); err != nil {
			return fmt.Errorf("invalid key prefix segment '%s': %w", segment, err)
		}
	}

	return nil
}

// ValidateObjectKey validates a complete object key.
func ValidateObjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}
	if len(key) > 1024 {
		return fmt.Errorf("object key too long: maximum 1024 characters, got %d", len(key))
	}
	return ValidateKeyPrefix(key)
}
