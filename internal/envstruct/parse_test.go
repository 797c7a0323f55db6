package envstruct_test

import (
	"testing"

	"github.com/SaurabhKalal/rag-chatbot/internal/envstruct"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Addr     string `env:"TEST_ADDR" envDefault:"localhost:8000"`
	APIKey   string `env:"TEST_API_KEY"`
	TopK     int    `env:"TEST_TOP_K" envDefault:"5"`
	Untagged string
}

func lookupFromMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestPopulate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    testConfig
		wantErr error
	}{
		{
			name: "all set",
			env: map[string]string{
				"TEST_ADDR":    "localhost:0",
				"TEST_API_KEY": "secret",
				"TEST_TOP_K":   "10",
			},
			want: testConfig{Addr: "localhost:0", APIKey: "secret", TopK: 10},
		},
		{
			name: "defaults kick in",
			env:  map[string]string{"TEST_API_KEY": "secret"},
			want: testConfig{Addr: "localhost:8000", APIKey: "secret", TopK: 5},
		},
		{
			name:    "missing required variable",
			env:     map[string]string{},
			wantErr: envstruct.ErrEnvNotSet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg testConfig
			err := envstruct.Populate(&cfg, lookupFromMap(tt.env))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg)
		})
	}
}

func TestPopulateRejectsNonStruct(t *testing.T) {
	var notStruct int
	err := envstruct.Populate(&notStruct, lookupFromMap(nil))
	require.ErrorIs(t, err, envstruct.ErrInvalidValue)

	var cfg testConfig
	err = envstruct.Populate(cfg, lookupFromMap(nil))
	require.ErrorIs(t, err, envstruct.ErrInvalidValue)
}

func TestPopulateRejectsMalformedInt(t *testing.T) {
	var cfg testConfig
	err := envstruct.Populate(&cfg, lookupFromMap(map[string]string{
		"TEST_API_KEY": "secret",
		"TEST_TOP_K":   "not-a-number",
	}))
	require.Error(t, err)
}
