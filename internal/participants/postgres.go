package participants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/models"
)

const DefaultTable = "participants"

// OpenPostgres opens a pgx-backed pool. An empty dsn makes pgx fall back to
// the PG* environment variables.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

type PostgresStore struct {
	db    *sql.DB
	table string
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// EnsureSchema creates the participants table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    id SERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    name TEXT,
    address TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("creating %s table: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, sessionID string, participants []models.Participant) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Str("session_id", sessionID).Msg("Rollback failed")
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}

	insert := `INSERT INTO ` + s.table + ` (session_id, name, address) VALUES ($1, $2, $3)`
	for _, p := range participants {
		if _, err = tx.ExecContext(ctx, insert, sessionID, p.Name, p.Address); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]models.Participant, error) {
	q := `SELECT name, address FROM ` + s.table + ` WHERE session_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var name, address sql.NullString
		if err := rows.Scan(&name, &address); err != nil {
			return nil, err
		}
		participants = append(participants, models.Participant{
			SessionID: sessionID,
			Name:      name.String,
			Address:   address.String,
		})
	}
	return participants, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Backend: "postgres"}
	if err := s.db.QueryRowContext(ctx, `SELECT version()`).Scan(&stats.Version); err != nil {
		return nil, fmt.Errorf("query version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&stats.Count); err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	return stats, nil
}
