package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"play_reviews/internal/adapters/observability"
	"play_reviews/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo is a domain.StateStore over the connector_state table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Load(ctx context.Context, key string) (domain.State, bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, getStateSQL, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		observability.ObserveState("mysql", "miss")
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, err
	}
	observability.ObserveState("mysql", "hit")
	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.State{}, false, fmt.Errorf("%w: mysql %s: %v", domain.ErrInvalidState, key, err)
	}
	return st, true, nil
}

// Save upserts the state row. cursor_at mirrors the watermark for ad-hoc queries.
func (r *Repo) Save(ctx context.Context, key string, st domain.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	observability.ObserveState("mysql", "save")
	_, err = r.db.ExecContext(ctx, upsertStateSQL, key, valStr(st.At), string(b))
	return err
}
