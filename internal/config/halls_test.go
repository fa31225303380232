package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHallsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "halls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHalls_EmptyPathUsesDefaults(t *testing.T) {
	halls, err := LoadHalls("")
	require.NoError(t, err)
	require.NotEmpty(t, halls)
	assert.Equal(t, "Baker House", halls[0].Name)
	for _, h := range halls {
		assert.NotEmpty(t, h.URL)
	}
}

func TestLoadHalls_FromFile(t *testing.T) {
	path := writeHallsFile(t, `halls:
  - name: Simmons Hall
    url: http://example.com/simmons
  - name: Baker House
    url: http://example.com/baker
`)

	halls, err := LoadHalls(path)
	require.NoError(t, err)
	require.Len(t, halls, 2)
	// file order is preserved, not sorted
	assert.Equal(t, "Simmons Hall", halls[0].Name)
	assert.Equal(t, "http://example.com/simmons", halls[0].URL)
	assert.Equal(t, "Baker House", halls[1].Name)
}

func TestLoadHalls_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no halls", "halls: []\n", "no halls"},
		{"missing url", "halls:\n  - name: Simmons Hall\n", "name and a url"},
		{"duplicate name", `halls:
  - name: Simmons Hall
    url: http://example.com/a
  - name: Simmons Hall
    url: http://example.com/b
`, "duplicate hall"},
		{"bad yaml", "halls: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHalls(writeHallsFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadHalls_MissingFile(t *testing.T) {
	_, err := LoadHalls(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
