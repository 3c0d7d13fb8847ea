package besttime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/database"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

func testStore(t *testing.T, s Records) {
	ctx := context.Background()

	_, err := s.Get(ctx, "10x10:10")
	assert.ErrorIs(t, err, ErrNotFound)

	tests := []struct {
		board   string
		seconds int
		best    int
	}{
		{"10x10:10", 40, 40},
		{"16x16:40", 200, 200},
		{"10x10:10", 35, 35},
		{"10x10:10", 50, 35},
	}
	for _, test := range tests {
		best, err := s.Set(ctx, test.board, test.seconds)
		require.NoError(t, err)
		assert.Equal(t, test.best, best, "set %s to %d", test.board, test.seconds)
	}

	seconds, err := s.Get(ctx, "10x10:10")
	require.NoError(t, err)
	assert.Equal(t, 35, seconds)

	seconds, err = s.Get(ctx, "16x16:40")
	require.NoError(t, err)
	assert.Equal(t, 200, seconds)

	_, err = s.Set(ctx, "10x10:10", -1)
	assert.ErrorIs(t, err, ErrRejected)

	times, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 35, times["10x10:10"])
	assert.Equal(t, 200, times["16x16:40"])

	require.NoError(t, s.Delete(ctx, "10x10:10"))
	assert.ErrorIs(t, s.Delete(ctx, "10x10:10"), ErrNotFound)
	_, err = s.Get(ctx, "10x10:10")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "besttime.gob")
	testStore(t, NewFileStore(path))

	seconds, err := NewFileStore(path).Get(context.Background(), "16x16:40")
	require.NoError(t, err)
	assert.Equal(t, 200, seconds, "times survive reopening the file")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "besttime.gob")
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o644))

	s := NewFileStore(path)
	_, err := s.Get(context.Background(), "10x10:10")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in short mode")
	}
	url, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, _, err := database.ConnectAndMigrate(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := repository.New(pool)
	for _, board := range []string{"10x10:10", "16x16:40"} {
		_, err := repo.DeleteBestTime(ctx, board)
		require.NoError(t, err)
	}
	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupPostgres(t)
	testStore(t, NewPostgresStore(pool))
}

func TestPostgresStoreKeepsLowest(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	s := NewPostgresStore(pool)

	_, err := s.Set(ctx, "10x10:10", 10)
	require.NoError(t, err)
	best, err := s.Set(ctx, "10x10:10", 50)
	require.NoError(t, err)
	assert.Equal(t, 10, best, "the stored row is returned")

	seconds, err := s.Get(ctx, "10x10:10")
	require.NoError(t, err)
	assert.Equal(t, 10, seconds)

	times, err := repository.New(pool).ListBestTimes(ctx, repository.BestTimeFilter{
		Boards: []string{"10x10:10"},
	})
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.EqualValues(t, 10, times[0].Seconds)
}
