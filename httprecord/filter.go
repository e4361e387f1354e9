package httprecord

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Policy selects which headers end up in a record.
//
// A nil AllowHeaders admits every header; a non-nil empty one admits none.
// DenyHeaders is applied after AllowHeaders, so deny always wins.
type Policy struct {
	// AllowHeaders lists the only header names to keep
	AllowHeaders []string `json:"allow_headers,omitempty" yaml:"allow_headers,omitempty" mapstructure:"allow_headers" validate:"omitempty,dive,required"`
	// DenyHeaders lists header names that are always removed
	DenyHeaders []string `json:"deny_headers,omitempty" yaml:"deny_headers,omitempty" mapstructure:"deny_headers" validate:"omitempty,dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports an ErrInvalidArgument if either list contains an empty name.
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	if err := validate.Struct(p); err != nil {
		return invalidPolicy(err)
	}
	return nil
}

func (p *Policy) clone() *Policy {
	return &Policy{
		AllowHeaders: cloneStrings(p.AllowHeaders),
		DenyHeaders:  cloneStrings(p.DenyHeaders),
	}
}

// cloneStrings keeps the difference between a nil and an empty list.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// Filter returns the headers admitted by policy. A nil policy admits all
// headers. The input map is never modified and the result is never nil.
func Filter(headers Headers, policy *Policy) (Headers, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return filterHeaders(headers, policy), nil
}

// filterHeaders assumes policy has been validated.
func filterHeaders(headers Headers, policy *Policy) Headers {
	if policy == nil {
		return headers.Clone()
	}

	var out Headers
	if policy.AllowHeaders != nil {
		out = make(Headers, len(policy.AllowHeaders))
		for _, name := range policy.AllowHeaders {
			if value, ok := headers[name]; ok {
				out[name] = value
			}
		}
	} else {
		out = headers.Clone()
	}

	for _, name := range policy.DenyHeaders {
		delete(out, name)
	}
	return out
}

// PolicyFromOptions builds a Policy from a loosely typed option map, such as
// one decoded from JSON or read through viper. Recognized keys are
// allowHeaders/allow_headers and denyHeaders/deny_headers; other keys are
// ignored. A list that is not made of strings fails with ErrInvalidArgument.
func PolicyFromOptions(opts map[string]any) (*Policy, error) {
	policy := &Policy{}
	for key, value := range opts {
		var target *[]string
		switch key {
		case "allowHeaders", "allow_headers":
			target = &policy.AllowHeaders
		case "denyHeaders", "deny_headers":
			target = &policy.DenyHeaders
		default:
			continue
		}

		names, err := stringList(key, value)
		if err != nil {
			return nil, err
		}
		*target = names
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func stringList(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append(make([]string, 0, len(v)), v...), nil
	case []any:
		names := make([]string, 0, len(v))
		for i, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T, want string", ErrInvalidArgument, key, i, item)
			}
			names = append(names, name)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want a list of strings", ErrInvalidArgument, key, value)
	}
}

func invalidPolicy(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(validationMessages(err), "; "))
}
