package hashutil

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestBlake3File(t *testing.T) {
	data := []byte("frozen graph bytes")
	path := filepath.Join(t.TempDir(), "model.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := Blake3File(path)
	require.NoError(t, err)
	sum := blake3.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, 64)
}

func TestBlake3FileMissing(t *testing.T) {
	_, err := Blake3File(filepath.Join(t.TempDir(), "missing.pb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
