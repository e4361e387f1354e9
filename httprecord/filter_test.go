package httprecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeaders() Headers {
	return Headers{
		"host":          "a.com",
		"authorization": "secret",
		"x-req-id":      "1",
		"accept":        "*/*",
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  Headers
		policy   *Policy
		expected Headers
	}{
		{
			name:     "nil policy keeps everything",
			headers:  sampleHeaders(),
			policy:   nil,
			expected: sampleHeaders(),
		},
		{
			name:     "empty policy keeps everything",
			headers:  sampleHeaders(),
			policy:   &Policy{},
			expected: sampleHeaders(),
		},
		{
			name:     "allow list",
			headers:  sampleHeaders(),
			policy:   &Policy{AllowHeaders: []string{"host", "x-req-id"}},
			expected: Headers{"host": "a.com", "x-req-id": "1"},
		},
		{
			name:     "allowed header missing from input is not inserted",
			headers:  sampleHeaders(),
			policy:   &Policy{AllowHeaders: []string{"host", "x-missing"}},
			expected: Headers{"host": "a.com"},
		},
		{
			name:     "empty allow list admits nothing",
			headers:  sampleHeaders(),
			policy:   &Policy{AllowHeaders: []string{}},
			expected: Headers{},
		},
		{
			name:     "deny list",
			headers:  sampleHeaders(),
			policy:   &Policy{DenyHeaders: []string{"authorization", "not-there"}},
			expected: Headers{"host": "a.com", "x-req-id": "1", "accept": "*/*"},
		},
		{
			name:    "deny wins over allow",
			headers: sampleHeaders(),
			policy: &Policy{
				AllowHeaders: []string{"host", "authorization"},
				DenyHeaders:  []string{"authorization"},
			},
			expected: Headers{"host": "a.com"},
		},
		{
			name:     "matching is case-sensitive",
			headers:  Headers{"Authorization": "secret", "host": "a.com"},
			policy:   &Policy{DenyHeaders: []string{"authorization"}},
			expected: Headers{"Authorization": "secret", "host": "a.com"},
		},
		{
			name:     "empty headers",
			headers:  Headers{},
			policy:   &Policy{AllowHeaders: []string{"host"}, DenyHeaders: []string{"x"}},
			expected: Headers{},
		},
		{
			name:     "nil headers",
			headers:  nil,
			policy:   &Policy{DenyHeaders: []string{"x"}},
			expected: Headers{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Filter(tt.headers, tt.policy)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilter_Properties(t *testing.T) {
	t.Parallel()

	lists := [][]string{nil, {}, {"host"}, {"host", "authorization"}, {"x-req-id", "missing"}, {"accept", "host", "x-req-id", "authorization"}}

	for _, allow := range lists {
		for _, deny := range lists {
			policy := &Policy{AllowHeaders: allow, DenyHeaders: deny}
			input := sampleHeaders()
			snapshot := sampleHeaders()

			got, err := Filter(input, policy)
			require.NoError(t, err)

			// composition: exactly the allowed keys minus the denied ones
			for name, value := range input {
				allowed := allow == nil || contains(allow, name)
				if allowed && !contains(deny, name) {
					assert.Equal(t, value, got[name], "allow=%v deny=%v key=%s", allow, deny, name)
				} else {
					assert.NotContains(t, got, name, "allow=%v deny=%v", allow, deny)
				}
			}
			assert.LessOrEqual(t, len(got), len(input))

			// idempotence
			again, err := Filter(got, policy)
			require.NoError(t, err)
			assert.Equal(t, got, again)

			// input untouched
			assert.Equal(t, snapshot, input)
		}
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	input := Headers{"host": "a.com"}
	got, err := Filter(input, nil)
	require.NoError(t, err)

	got["host"] = "b.com"
	assert.Equal(t, "a.com", input["host"])
}

func TestFilter_InvalidPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy *Policy
	}{
		{name: "empty allow name", policy: &Policy{AllowHeaders: []string{"host", ""}}},
		{name: "empty deny name", policy: &Policy{DenyHeaders: []string{""}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Filter(sampleHeaders(), tt.policy)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestPolicyFromOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     map[string]any
		expected *Policy
		wantErr  bool
	}{
		{
			name:     "nil options",
			opts:     nil,
			expected: &Policy{},
		},
		{
			name: "camel case keys",
			opts: map[string]any{
				"allowHeaders": []string{"host"},
				"denyHeaders":  []any{"authorization"},
			},
			expected: &Policy{AllowHeaders: []string{"host"}, DenyHeaders: []string{"authorization"}},
		},
		{
			name: "snake case keys",
			opts: map[string]any{
				"allow_headers": []any{"host", "accept"},
			},
			expected: &Policy{AllowHeaders: []string{"host", "accept"}},
		},
		{
			name: "unknown keys are ignored",
			opts: map[string]any{
				"maskHeaders": 42,
			},
			expected: &Policy{},
		},
		{
			name: "explicit nil is absent",
			opts: map[string]any{
				"allowHeaders": nil,
			},
			expected: &Policy{},
		},
		{
			name:    "non-string element",
			opts:    map[string]any{"denyHeaders": []any{"authorization", 7}},
			wantErr: true,
		},
		{
			name:    "not a list",
			opts:    map[string]any{"allowHeaders": "host"},
			wantErr: true,
		},
		{
			name:    "empty name",
			opts:    map[string]any{"allowHeaders": []string{""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PolicyFromOptions(tt.opts)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
