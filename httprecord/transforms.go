package httprecord

import (
	"regexp"
	"strings"
)

// TransformFunc rewrites a header value before it is logged.
type TransformFunc func(value string) string

// Transform returns a copy of h with each transform applied to the header of
// the same name. Headers without a transform are copied as is.
func (h Headers) Transform(transforms map[string]TransformFunc) Headers {
	out := h.Clone()
	for name, transform := range transforms {
		if value, ok := out[name]; ok && transform != nil {
			out[name] = transform(value)
		}
	}
	return out
}

// ChainTransforms chains multiple transformation functions
func ChainTransforms(transforms ...TransformFunc) TransformFunc {
	return func(value string) string {
		result := value
		for _, transform := range transforms {
			if transform != nil {
				result = transform(result)
			}
		}
		return result
	}
}

// Redact replaces any value with replacement.
func Redact(replacement string) TransformFunc {
	return func(string) string {
		return replacement
	}
}

// MaskSensitive masks sensitive information, showing only first and last few characters
func MaskSensitive(showChars int) TransformFunc {
	showChars = max(showChars, 0)
	return func(value string) string {
		if len(value) <= showChars*2 {
			return strings.Repeat("*", len(value))
		}
		return value[:showChars] + strings.Repeat("*", len(value)-showChars*2) + value[len(value)-showChars:]
	}
}

// MaskBearerToken keeps the "Bearer " scheme and masks the token after it.
func MaskBearerToken(showChars int) TransformFunc {
	const bearerPrefix = "Bearer "
	mask := MaskSensitive(showChars)
	return func(value string) string {
		if token, ok := strings.CutPrefix(value, bearerPrefix); ok {
			return bearerPrefix + mask(strings.TrimSpace(token))
		}
		return mask(value)
	}
}

// SanitizeUserAgent replaces version numbers in a user agent with "x.x.x".
func SanitizeUserAgent(value string) string {
	return versionPattern.ReplaceAllString(value, "x.x.x")
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)*`)

// RegexReplace performs regex-based replacement
func RegexReplace(pattern, replacement string) TransformFunc {
	re := regexp.MustCompile(pattern)
	return func(value string) string {
		return re.ReplaceAllString(value, replacement)
	}
}

// Truncate truncates the value to a maximum length
func Truncate(maxLength int) TransformFunc {
	maxLength = max(maxLength, 0)
	return func(value string) string {
		if len(value) <= maxLength {
			return value
		}
		return value[:maxLength]
	}
}
