package besttime

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type PostgresStore struct {
	repo *repository.Queries
}

func NewPostgresStore(db repository.DBTX) *PostgresStore {
	return &PostgresStore{repo: repository.New(db)}
}

func (s *PostgresStore) Get(ctx context.Context, board string) (int, error) {
	row, err := s.repo.GetBestTime(ctx, board)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, err
	}
	return int(row.Seconds), nil
}

func (s *PostgresStore) Set(ctx context.Context, board string, seconds int) (int, error) {
	if seconds > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d seconds overflows the column", ErrRejected, seconds)
	}
	row, err := s.repo.UpsertBestTime(ctx, repository.UpsertBestTimeParams{
		Board:   board,
		Seconds: int32(seconds),
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return 0, fmt.Errorf("%w: %s", ErrRejected, pgErr.Message)
	} else if err != nil {
		return 0, err
	}
	return int(row.Seconds), nil
}

func (s *PostgresStore) List(ctx context.Context) (map[string]int, error) {
	rows, err := s.repo.ListBestTimes(ctx, repository.BestTimeFilter{})
	if err != nil {
		return nil, err
	}
	times := make(map[string]int, len(rows))
	for _, row := range rows {
		times[row.Board] = int(row.Seconds)
	}
	return times, nil
}

func (s *PostgresStore) Delete(ctx context.Context, board string) error {
	deleted, err := s.repo.DeleteBestTime(ctx, board)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
