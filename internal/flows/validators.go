package flows

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Required fails on nil, empty string or whitespace-only input.
func Required() Validator {
	return func(value any) error {
		if value == nil {
			return errors.New("required")
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}
}

// AtLeastOneLine fails unless the value contains at least one non-blank line.
func AtLeastOneLine() Validator {
	return func(value any) error {
		s, _ := value.(string)
		if len(splitLines(s)) == 0 {
			return errors.New("at least one entry is required")
		}
		return nil
	}
}

// IntMin parses the value as an integer and enforces a lower bound.
// Empty input passes; pair with Required when the field is mandatory.
func IntMin(min int64) Validator {
	return func(value any) error {
		n, ok, err := parseInt(value)
		if err != nil {
			return err
		}
		if ok && n < min {
			return fmt.Errorf("must be at least %d", min)
		}
		return nil
	}
}

// IntMax parses the value as an integer and enforces an upper bound.
func IntMax(max int64) Validator {
	return func(value any) error {
		n, ok, err := parseInt(value)
		if err != nil {
			return err
		}
		if ok && n > max {
			return fmt.Errorf("must be at most %d", max)
		}
		return nil
	}
}

// OneOf restricts a non-empty value to a fixed option list.
func OneOf(options ...string) Validator {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		for _, opt := range options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
	}
}

// EachLineOneOf applies OneOf to every non-blank line of a multiline value.
func EachLineOneOf(options ...string) Validator {
	single := OneOf(options...)
	return func(value any) error {
		s, _ := value.(string)
		for _, line := range splitLines(s) {
			if err := single(line); err != nil {
				return err
			}
		}
		return nil
	}
}

// IntLines requires every non-blank line to parse as an integer.
func IntLines() Validator {
	return func(value any) error {
		s, _ := value.(string)
		for _, line := range splitLines(s) {
			if _, err := strconv.ParseInt(line, 10, 64); err != nil {
				return fmt.Errorf("%q is not a number", line)
			}
		}
		return nil
	}
}

// ValidRegexp requires a non-empty value to compile as a regular expression.
func ValidRegexp() Validator {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Errorf("invalid pattern: %v", err)
		}
		return nil
	}
}

// Base64 requires a non-empty value to decode as standard base64.
func Base64() Validator {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			return fmt.Errorf("invalid base64: %v", err)
		}
		return nil
	}
}

// splitLines trims and splits multiline input, dropping blank lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// joinLines is the inverse normalization used by ArgsToState.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// parseInt accepts int64/int/float64/string representations. The second
// return is false when the input was empty.
func parseInt(value any) (int64, bool, error) {
	switch v := value.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return v, true, nil
	case int:
		return int64(v), true, nil
	case float64:
		return int64(v), true, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%q is not a number", v)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported numeric value %T", value)
	}
}
