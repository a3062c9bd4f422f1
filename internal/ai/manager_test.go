package ai

import (
	"reflect"
	"testing"
)

func TestParseQueryList(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		max     int
		want    []string
		wantErr bool
	}{
		{
			name:   "plain array",
			output: `["q1", "q2"]`,
			max:    5,
			want:   []string{"q1", "q2"},
		},
		{
			name:   "fenced array",
			output: "```json\n[\"a\", \"b\"]\n```",
			max:    5,
			want:   []string{"a", "b"},
		},
		{
			name:   "prefixed prose",
			output: `Here you go: ["only one"]`,
			max:    5,
			want:   []string{"only one"},
		},
		{
			name:   "dedup and cap",
			output: `["x", "X ", "y", "z"]`,
			max:    2,
			want:   []string{"x", "y"},
		},
		{
			name:    "not json",
			output:  "no list here",
			max:     3,
			wantErr: true,
		},
		{
			name:    "empty strings only",
			output:  `["", "  "]`,
			max:     3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQueryList(tt.output, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseQueryList() expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseQueryList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseQueryList() = %v, want %v", got, tt.want)
			}
		})
	}
}
