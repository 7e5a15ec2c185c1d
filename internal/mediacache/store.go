package mediacache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as Redis hashes under {prefix}:{generation}:{url}
// and tracks the generations in use in the set {prefix}:generations.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store over rdb.  A ttl of 0 keeps entries until
// their generation is dropped.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "mediacache"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(generation, url string) string {
	return s.prefix + ":" + generation + ":" + url
}

func (s *RedisStore) setKey() string { return s.prefix + ":generations" }

func (s *RedisStore) Get(ctx context.Context, generation, url string) (*Entry, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(generation, url)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	status, err := strconv.Atoi(m["status"])
	if err != nil {
		return nil, errors.New("mediacache: corrupt entry")
	}
	return &Entry{Status: status, ContentType: m["type"], Body: []byte(m["body"])}, nil
}

func (s *RedisStore) Put(ctx context.Context, generation, url string, e *Entry) error {
	key := s.key(generation, url)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "status", e.Status, "type", e.ContentType, "body", e.Body)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		p.SAdd(ctx, s.setKey(), generation)
		return nil
	})
	return err
}

func (s *RedisStore) Generations(ctx context.Context) ([]string, error) {
	gens, err := s.rdb.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(gens)
	return gens, nil
}

// Drop deletes a whole generation.
func (s *RedisStore) Drop(ctx context.Context, generation string) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+":"+generation+":*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return s.rdb.SRem(ctx, s.setKey(), generation).Err()
}

// MemoryStore is an in-process Store used when Redis is not configured.
type MemoryStore struct {
	mu   sync.RWMutex
	gens map[string]map[string]*Entry
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{gens: map[string]map[string]*Entry{}}
}

func (s *MemoryStore) Get(ctx context.Context, generation, url string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[generation][url], nil
}

func (s *MemoryStore) Put(ctx context.Context, generation, url string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gens[generation]
	if !ok {
		g = map[string]*Entry{}
		s.gens[generation] = g
	}
	cp := *e
	g[url] = &cp
	return nil
}

func (s *MemoryStore) Generations(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.gens))
	for g := range s.gens {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Drop(ctx context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gens, generation)
	return nil
}
