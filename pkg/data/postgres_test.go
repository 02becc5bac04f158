package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestPostgresStore runs the store suite against a disposable postgres
// container. Requires a container runtime; skipped with -short.
func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("sctl"),
		tcpostgres.WithUsername("sctl"),
		tcpostgres.WithPassword("sctl"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(ctr))
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Init(DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Greater(t, version, 0)

	t.Run("samples", func(t *testing.T) {
		probs := []float64{0.1, 0.5, 0.9}
		labels := []int{0, 1, 1}

		n, err := SaveSamples(db, "pg-batch", probs, labels)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		gotProbs, gotLabels, err := GetSamples(db, "pg-batch")
		require.NoError(t, err)
		assert.Equal(t, probs, gotProbs)
		assert.Equal(t, labels, gotLabels)

		batches, err := ListBatches(db)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, 3, batches[0].Samples)
	})

	t.Run("models", func(t *testing.T) {
		m := fitTestModel(t)
		require.NoError(t, SaveModel(db, "pg-model", m))

		got, err := GetModel(db, "pg-model")
		require.NoError(t, err)
		assert.Equal(t, m.Config, got.Config)
		assert.Equal(t, m.Bins, got.Bins)
		assert.Equal(t, m.Segments, got.Segments)

		list, err := ListModels(db)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "pg-model", list[0].Name)
	})

	t.Run("scores", func(t *testing.T) {
		_, err := SaveScores(db, "pg-model", "r1", []float64{0.2, 0.8}, []int{590, 505})
		require.NoError(t, err)

		stats, err := GetScoreStats(db, "pg-model")
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Count)
		assert.Equal(t, 505, stats.Min)
		assert.Equal(t, 590, stats.Max)
	})

	t.Run("state", func(t *testing.T) {
		state, err := GetDataState(db)
		require.NoError(t, err)
		assert.EqualValues(t, 3, state["samples"])
		assert.EqualValues(t, 1, state["models"])
		assert.EqualValues(t, 2, state["scores"])
	})
}
