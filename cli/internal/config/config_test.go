package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRequiredVersion(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    string
	}{
		{"no constraint", "", ""},
		{"satisfied", ">= 0.1.0", ""},
		{"satisfied range", ">= 0.1.0, < 1.0.0", ""},
		{"unsatisfied", ">= 2.0.0", `schemaplan 0.1.0 does not satisfy required_version ">= 2.0.0"`},
		{"malformed", "not-a-constraint", `invalid required_version constraint "not-a-constraint"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RequiredVersion: tt.constraint}
			err := cfg.CheckRequiredVersion()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
