package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/infrastructure/migration"
	"natively/internal/infrastructure/storage/storagetest"
)

func TestStorage_Contract(t *testing.T) {
	dsn := os.Getenv("NATIVELY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NATIVELY_TEST_POSTGRES_DSN не задан")
	}

	storagetest.Run(t, func(t *testing.T) kv.Driver {
		ctx := context.Background()
		s, err := New(ctx, dsn, migration.DefaultEngine, slog.Default())
		require.NoError(t, err)
		require.NoError(t, s.Clear(ctx))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
