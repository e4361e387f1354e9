package httprecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireHeaderParser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected Headers
		wantErr  error
	}{
		{
			name:     "empty",
			raw:      "",
			expected: nil,
		},
		{
			name:     "status line and headers",
			raw:      "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello",
			expected: Headers{"Content-Type": "text/plain", "Content-Length": "5"},
		},
		{
			name:     "headers without status line",
			raw:      "X-One: 1\nX-Two:2\n",
			expected: Headers{"X-One": "1", "X-Two": "2"},
		},
		{
			name:     "repeated headers are joined",
			raw:      "HTTP/1.1 200 OK\r\nVary: Accept\r\nVary: Origin\r\n\r\n",
			expected: Headers{"Vary": "Accept, Origin"},
		},
		{
			name:     "folded value",
			raw:      "HTTP/1.0 200 OK\r\nX-Long: first\r\n  second\r\n\r\n",
			expected: Headers{"X-Long": "first second"},
		},
		{
			name:     "value containing a colon",
			raw:      "Location: http://example.com:8080/x\r\n\r\n",
			expected: Headers{"Location": "http://example.com:8080/x"},
		},
		{
			name:     "status line only",
			raw:      "HTTP/1.1 204 No Content\r\n\r\n",
			expected: Headers{},
		},
		{
			name:    "missing colon",
			raw:     "HTTP/1.1 200 OK\r\nbroken\r\n\r\n",
			wantErr: ErrMalformedHeader,
		},
		{
			name:    "empty name",
			raw:     ": value\r\n\r\n",
			wantErr: ErrMalformedHeader,
		},
		{
			name:    "continuation without a header",
			raw:     "HTTP/1.1 200 OK\r\n folded\r\n\r\n",
			wantErr: ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := WireHeaderParser{}.ParseRawHeaders(&ResponseSource{Raw: []byte(tt.raw)})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWireHeaderParser_NilSource(t *testing.T) {
	t.Parallel()

	got, err := WireHeaderParser{}.ParseRawHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
