package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("DOCQA_A", "alice")
	t.Setenv("DOCQA_B", "bob")
	t.Setenv("DOCQA_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set var", "value: ${DOCQA_A}", "value: alice"},
		{"unset var", "value: ${DOCQA_UNSET_12345}", "value: "},
		{"default when unset", "value: ${DOCQA_UNSET_12345:-fallback}", "value: fallback"},
		{"default ignored when set", "value: ${DOCQA_A:-fallback}", "value: alice"},
		{"default when empty", "value: ${DOCQA_EMPTY:-fallback}", "value: fallback"},
		{"multiple", "${DOCQA_A}:${DOCQA_B}", "alice:bob"},
		{"no vars", "no variables here", "no variables here"},
		{"bare dollar untouched", "cost: $DOCQA_A", "cost: $DOCQA_A"},
		{
			"nested in yaml",
			"gateway:\n  headers:\n    X-User: ${DOCQA_A}\n    X-Peer: ${DOCQA_B}",
			"gateway:\n  headers:\n    X-User: alice\n    X-Peer: bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
