package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natively/internal/domain/kv"
	"natively/internal/infrastructure/storage/storagetest"
)

func TestStorage_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) kv.Driver {
		s, err := Open(filepath.Join(t.TempDir(), "natively.bolt"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStorage_CloseNil(t *testing.T) {
	var s *Storage
	assert.NoError(t, s.Close())
}
