package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("GIT_QA_CONFIG", "")
	t.Setenv("GIT_QA_CACHE", "")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version", args: []string{"--version"}},
		{name: "help", args: []string{"--help"}},
		{name: "cache find", args: []string{"cache", "find"}},
		{name: "unknown command", args: []string{"unknown"}, wantErr: true},
		{name: "missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "cache", "find"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
