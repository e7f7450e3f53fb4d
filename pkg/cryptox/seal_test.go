package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	t.Parallel()

	keyPath := filepath.Join(t.TempDir(), "master.key")
	s, err := NewSealer(keyPath)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("refresh-token-value"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "refresh-token-value")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-token-value", string(plain))
}

func TestSealerGeneratesKeyFileOnce(t *testing.T) {
	t.Parallel()

	keyPath := filepath.Join(t.TempDir(), "keys", "master.key")

	first, err := NewSealer(keyPath)
	require.NoError(t, err)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sealed, err := first.Seal([]byte("value"))
	require.NoError(t, err)

	// A second sealer over the same file must be able to open data sealed
	// by the first.
	second, err := NewSealer(keyPath)
	require.NoError(t, err)
	plain, err := second.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "value", string(plain))
}

func TestOpenRejectsTamperedData(t *testing.T) {
	t.Parallel()

	s, err := NewSealer(filepath.Join(t.TempDir(), "master.key"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("value"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = s.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte("short"))
	require.Error(t, err)
}
