package redisad

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"play_reviews/internal/adapters/observability"
	"play_reviews/internal/domain"
)

const keyPrefix = "playreviews:state:"

// StateStore keeps connector state under playreviews:state:<app_id>. State
// never expires.
type StateStore struct{ c *redis.Client }

func New(addr, pass string, db int) *StateStore {
	return &StateStore{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *StateStore) Load(ctx context.Context, key string) (domain.State, bool, error) {
	v, err := r.c.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		observability.ObserveState("redis", "miss")
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, err
	}
	observability.ObserveState("redis", "hit")
	var st domain.State
	if err := json.Unmarshal(v, &st); err != nil {
		return domain.State{}, false, fmt.Errorf("%w: redis %s: %v", domain.ErrInvalidState, key, err)
	}
	return st, true, nil
}

func (r *StateStore) Save(ctx context.Context, key string, st domain.State) error {
	b, _ := json.Marshal(st)
	observability.ObserveState("redis", "save")
	return r.c.Set(ctx, keyPrefix+key, b, 0).Err()
}

func (r *StateStore) Close() error { return r.c.Close() }
