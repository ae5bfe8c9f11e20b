package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/sonemaro/pngshrink/internal/config"
	"github.com/sonemaro/pngshrink/internal/version"
	"github.com/sonemaro/pngshrink/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv() {
	for _, env := range []string{
		"PNGSHRINK_WORKERS", "PNGSHRINK_RATE_LIMIT", "PNGSHRINK_NO_PNG",
		"PNGSHRINK_NO_WEBP", "PNGSHRINK_REMOVE_LARGER_PNG", "PNGSHRINK_OUTPUT",
		"PNGSHRINK_OUTPUT_FILE", "PNGSHRINK_VERBOSE",
	} {
		os.Unsetenv(env)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		verify  func(*testing.T, *config.Config)
		wantErr string
	}{
		{
			name: "defaults",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, worker.DefaultWorkers(), cfg.Workers)
				assert.Equal(t, "text", cfg.Output)
				assert.False(t, cfg.NoPNG)
				assert.False(t, cfg.RemoveLargerPNG)
			},
		},
		{
			name: "flags",
			args: []string{"-w", "1", "-r", "3", "--no-webp", "--remove-larger-png", "-o", "yaml", "-f", "out.yaml", "--no-progress", "--no-color", "-vv"},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 1, cfg.Workers)
				assert.Equal(t, 3, cfg.RateLimit)
				assert.True(t, cfg.NoWebP)
				assert.True(t, cfg.RemoveLargerPNG)
				assert.Equal(t, "yaml", cfg.Output)
				assert.Equal(t, "out.yaml", cfg.OutputFile)
				assert.True(t, cfg.NoProgress)
				assert.True(t, cfg.NoColor)
				assert.Equal(t, 2, cfg.Verbose)
			},
		},
		{
			name: "environment without flags",
			env:  map[string]string{"PNGSHRINK_NO_PNG": "true", "PNGSHRINK_OUTPUT": "json"},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.NoPNG)
				assert.Equal(t, "json", cfg.Output)
			},
		},
		{
			name: "flags override environment",
			env:  map[string]string{"PNGSHRINK_NO_PNG": "true", "PNGSHRINK_WORKERS": "1"},
			args: []string{"--no-png=false", "-w", "0"},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.NoPNG)
				assert.Equal(t, worker.DefaultWorkers(), cfg.Workers)
			},
		},
		{
			name:    "invalid flag value",
			args:    []string{"-o", "xml"},
			wantErr: "invalid configuration: invalid output format",
		},
		{
			name:    "invalid environment",
			env:     map[string]string{"PNGSHRINK_RATE_LIMIT": "-1"},
			wantErr: "failed to load configuration: rate limit must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			opts := &Options{}
			cmd := newRootCommand(opts)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := loadConfig(cmd, opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"version"}, want: version.Version + "\n"},
		{name: "full", args: []string{"version", "-f"}, want: "pngshrink " + version.Version},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewRootCommand()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRootCommandRejectsInvalidInput(t *testing.T) {
	clearEnv()
	t.Setenv("PNGSHRINK_NO_PROGRESS", "true")

	var stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"photo.jpg"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image is not PNG")
}
