package fakepb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []condition
		wantErr bool
	}{
		{
			name:  "single",
			input: "discord_user_id='42'",
			want:  []condition{{"discord_user_id", "42"}},
		},
		{
			name:  "parenthesised conjunction",
			input: "(id='abc' && discord_user_id='42')",
			want:  []condition{{"id", "abc"}, {"discord_user_id", "42"}},
		},
		{
			name:  "escaped quote and backslash",
			input: `(title='it\'s \\ here')`,
			want:  []condition{{"title", `it's \ here`}},
		},
		{name: "or rejected", input: "id='a' || id='b'", wantErr: true},
		{name: "unterminated", input: "id='abc", wantErr: true},
		{name: "bare word", input: "id=abc", wantErr: true},
		{name: "unbalanced", input: "(id='a'", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "injection without escaping", input: "(id='x' || '1'='1' && discord_user_id='42')", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
