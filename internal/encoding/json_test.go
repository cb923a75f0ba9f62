package encoding

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestReadJSON_Missing(t *testing.T) {
	got, err := ReadJSON[sample](filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteJSONSecure_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sample.json")

	require.NoError(t, WriteJSONSecure(path, sample{Name: "a", Count: 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"count\": 2\n}\n", string(data))

	got, err := ReadJSON[sample](path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sample{Name: "a", Count: 2}, *got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestReadJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := ReadJSON[sample](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}
