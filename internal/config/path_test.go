package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("ENVL_TEST_DIR", "/tmp/envl")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "absolute unchanged", input: "/var/data/envl.db", want: "/var/data/envl.db"},
		{name: "tilde slash", input: "~/data/envl.db", want: filepath.Join(home, "data", "envl.db")},
		{name: "bare tilde", input: "~", want: home},
		{name: "env var", input: "$ENVL_TEST_DIR/envl.db", want: "/tmp/envl/envl.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path := DefaultDatabasePath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("envl", "envl.db")))
}
