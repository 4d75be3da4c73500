package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUndefinedTable = "42P01"

const documentsSchema = `
	CREATE TABLE IF NOT EXISTS inventory_documents (
		name       TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps the whole document as one JSONB row, so every save is
// still a full rewrite, just a transactional one.
type PostgresStore struct {
	db   *sql.DB
	name string
}

func OpenPostgresStore(ctx context.Context, dsn, document string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	s := NewPostgresStore(db, document)
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sql.DB, document string) *PostgresStore {
	if document == "" {
		document = "games"
	}
	return &PostgresStore{db: db, name: document}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, documentsSchema); err != nil {
			return fmt.Errorf("create inventory_documents: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Load(ctx context.Context) (Document, error) {
	var body []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT body
			FROM inventory_documents
			WHERE name = $1
		`, s.name).Scan(&body)
	})

	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("postgres load: %w", err)
	}
	return decodeDocument(body)
}

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	err = s.upsert(ctx, string(body))
	if isUndefinedTable(err) {
		if err := s.migrate(ctx); err != nil {
			return err
		}
		err = s.upsert(ctx, string(body))
	}
	if err != nil {
		return fmt.Errorf("postgres save: %w", err)
	}
	return nil
}

func (s *PostgresStore) upsert(ctx context.Context, body string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO inventory_documents (name, body, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE
			SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		`, s.name, body)
		return err
	})
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
