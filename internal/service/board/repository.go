package board

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-board/internal/domain"
)

// Repository stores committed move history.
type Repository interface {
	AppendMove(ctx context.Context, rec *domain.MoveRecord) error
	// ListMoves returns the most recent limit moves of a session, oldest first.
	ListMoves(ctx context.Context, sessionID string, limit int) ([]*domain.MoveRecord, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS board_moves (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	ply         INTEGER     NOT NULL,
	move        TEXT        NOT NULL,
	piece       TEXT        NOT NULL,
	owner       TEXT        NOT NULL,
	captured    TEXT        NOT NULL DEFAULT '',
	kind        TEXT        NOT NULL,
	fen         TEXT        NOT NULL,
	played_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, ply)
)`

type pgRepository struct {
	db *sql.DB
}

// OpenPostgres connects to DATABASE_URL and makes sure the history table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create board_moves: %w", err)
	}
	return db, nil
}

func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) AppendMove(ctx context.Context, rec *domain.MoveRecord) error {
	if rec == nil {
		return fmt.Errorf("nil move record")
	}
	const query = `
		INSERT INTO board_moves (session_id, ply, move, piece, owner, captured, kind, fen, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, ply) DO NOTHING
		RETURNING id`
	var id sql.NullInt64
	err := r.db.QueryRowContext(ctx, query,
		rec.SessionID, rec.Ply, rec.Move, rec.Piece, rec.Owner, rec.Captured, rec.Kind, rec.FEN, rec.PlayedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert board move: %w", err)
	}
	rec.ID = id.Int64
	return nil
}

func (r *pgRepository) ListMoves(ctx context.Context, sessionID string, limit int) ([]*domain.MoveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, session_id, ply, move, piece, owner, captured, kind, fen, played_at
		FROM (
			SELECT * FROM board_moves
			WHERE session_id = $1
			ORDER BY ply DESC
			LIMIT $2
		) recent
		ORDER BY ply ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("select board moves: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.MoveRecord, 0, limit)
	for rows.Next() {
		var rec domain.MoveRecord
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Ply, &rec.Move, &rec.Piece,
			&rec.Owner, &rec.Captured, &rec.Kind, &rec.FEN, &rec.PlayedAt,
		); err != nil {
			return nil, fmt.Errorf("scan board move: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
