package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surface.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "surface.db", cfg.Snapshot)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoad_ParsesAllFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
snapshot: build/model.db
package: "@acme/sdk"
root_dir: lib
entrypoints:
  - lib/index.ts
preferred_names:
  - open
internal_members:
  - _transport
concurrency: 8
max_depth: 32
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build/model.db", cfg.Snapshot)
	assert.Equal(t, "@acme/sdk", cfg.Package)
	assert.Equal(t, "lib", cfg.RootDir)
	assert.Equal(t, []string{"lib/index.ts"}, cfg.Entrypoints)
	assert.Equal(t, []string{"open"}, cfg.PreferredNames)
	assert.Equal(t, []string{"_transport"}, cfg.InternalMembers)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 32, cfg.MaxDepth)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "package: mylib\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mylib", cfg.Package)
	assert.Equal(t, "surface.db", cfg.Snapshot)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "snapshot: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty snapshot", `snapshot: ""`, "snapshot path"},
		{"zero concurrency", "concurrency: 0", "concurrency"},
		{"negative max depth", "max_depth: -1", "max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
