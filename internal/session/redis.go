package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisStore keeps workspaces as JSON strings with a sliding TTL.
type RedisStore struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	lockTTL  time.Duration
	pageSize int
}

// NewRedisStore builds a store that writes keys under prefix.  lockTTL
// bounds how long a crashed request can hold a user's lock.
func NewRedisStore(rdb *redis.Client, prefix string, ttl, lockTTL time.Duration, pageSize int) *RedisStore {
	if prefix == "" {
		prefix = "catalog:ws"
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl, lockTTL: lockTTL, pageSize: pageSize}
}

func (s *RedisStore) stateKey(user string) string { return s.prefix + ":state:" + user }
func (s *RedisStore) lockKey(user string) string  { return s.prefix + ":lock:" + user }

func (s *RedisStore) Load(ctx context.Context, userKey string) (catalog.State, error) {
	bs, err := s.rdb.Get(ctx, s.stateKey(userKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.NewState(s.pageSize), nil
	}
	if err != nil {
		return catalog.State{}, fmt.Errorf("load workspace: %w", err)
	}
	var st catalog.State
	if err := json.Unmarshal(bs, &st); err != nil {
		// A state written by an incompatible build is discarded.
		return catalog.NewState(s.pageSize), nil
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, userKey string, st catalog.State) error {
	bs, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.stateKey(userKey), bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

func (s *RedisStore) Acquire(ctx context.Context, userKey string) (func(), error) {
	token := xid.New().String()
	key := s.lockKey(userKey)
	ok, err := s.rdb.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		_ = releaseScript.Run(context.Background(), s.rdb, []string{key}, token).Err()
	}, nil
}
