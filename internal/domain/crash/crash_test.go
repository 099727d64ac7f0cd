package crash

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/infrastructure/storage/memory"
)

func TestReporter_KeepsLatest(t *testing.T) {
	// Arrange
	r := NewReporter(kv.NewStore(memory.New(), slog.Default()), slog.Default())
	ctx := context.Background()

	// Act
	for i := 0; i < MaxReports+10; i++ {
		r.Record(ctx, fmt.Sprintf("crash %d", i), map[string]string{"type": "natively.haptic.trigger"})
	}

	// Assert
	reports, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, MaxReports)
	assert.Equal(t, "crash 10", reports[0].Message)
	assert.Equal(t, fmt.Sprintf("crash %d", MaxReports+9), reports[len(reports)-1].Message)
	assert.NotEmpty(t, reports[0].Stack)
}
