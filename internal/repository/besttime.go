package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type BestTime struct {
	Board     string             `db:"board"`
	Seconds   int32              `db:"seconds"`
	UpdatedAt pgtype.Timestamptz `db:"updated_at"`
}

// GetBestTime returns [pgx.ErrNoRows] when no game on board was won yet.
func (q Queries) GetBestTime(ctx context.Context, board string) (*BestTime, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT board, seconds, updated_at FROM best_time WHERE board = $1",
		board,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[BestTime])
}

type UpsertBestTimeParams struct {
	Board   string
	Seconds int32
}

// UpsertBestTime stores seconds unless a lower time is already recorded and
// returns the row as it is after the write.
func (q Queries) UpsertBestTime(
	ctx context.Context, params UpsertBestTimeParams,
) (*BestTime, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO best_time (board, seconds)
		VALUES (@board, @seconds)
		ON CONFLICT (board) DO UPDATE
		SET seconds = LEAST(best_time.seconds, excluded.seconds)
			, updated_at = CASE
				WHEN excluded.seconds < best_time.seconds THEN now()
				ELSE best_time.updated_at
			END
		RETURNING board, seconds, updated_at;`,
		pgx.NamedArgs{
			"board":   params.Board,
			"seconds": params.Seconds,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[BestTime])
}

// DeleteBestTime reports whether a row was removed.
func (q Queries) DeleteBestTime(ctx context.Context, board string) (bool, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM best_time WHERE board = $1", board)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type BestTimeFilter struct {
	Boards []string
}

// ListBestTimes returns recorded times ordered by board, optionally limited to
// the boards in filter.
func (q Queries) ListBestTimes(
	ctx context.Context, filter BestTimeFilter,
) ([]BestTime, error) {
	query := "SELECT board, seconds, updated_at FROM best_time"
	args := pgx.NamedArgs{}
	if len(filter.Boards) > 0 {
		query += " WHERE board = ANY(@boards)"
		args["boards"] = filter.Boards
	}
	query += " ORDER BY board;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[BestTime])
}
