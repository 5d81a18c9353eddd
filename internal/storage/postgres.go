package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres keeps values in a (key, value, updated_at) table.
type Postgres struct {
	db       *sql.DB
	getQuery string
	setQuery string
	delQuery string
}

func NewPostgres(db *sql.DB, table string) *Postgres {
	return &Postgres{
		db:       db,
		getQuery: fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, table),
		setQuery: fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, table),
		delQuery: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table),
	}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, p.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if _, err := p.db.ExecContext(ctx, p.setQuery, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, p.delQuery, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}
