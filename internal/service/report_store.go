package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"stx-trader/internal/domain"

	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "report:"

// ReportStore keeps finished reports long enough to be downloaded.
type ReportStore interface {
	Save(ctx context.Context, r *domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisReportStore stores reports as JSON with a TTL.
type RedisReportStore struct {
	redis RedisClient
	ttl   time.Duration
}

func NewRedisReportStore(client RedisClient, ttl time.Duration) *RedisReportStore {
	return &RedisReportStore{redis: client, ttl: ttl}
}

func (s *RedisReportStore) Save(ctx context.Context, r *domain.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return s.redis.Set(ctx, reportKeyPrefix+r.ID, data, s.ttl).Err()
}

func (s *RedisReportStore) Get(ctx context.Context, id string) (*domain.Report, error) {
	val, err := s.redis.Get(ctx, reportKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	var r domain.Report
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &r, nil
}

// MemoryReportStore is used when Redis is not configured. Expired entries
// are dropped on write.
type MemoryReportStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	reports map[string]memoryEntry
}

type memoryEntry struct {
	report    *domain.Report
	expiresAt time.Time
}

func NewMemoryReportStore(ttl time.Duration) *MemoryReportStore {
	return &MemoryReportStore{
		ttl:     ttl,
		now:     time.Now,
		reports: make(map[string]memoryEntry),
	}
}

func (s *MemoryReportStore) Save(_ context.Context, r *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.reports {
		if now.After(e.expiresAt) {
			delete(s.reports, id)
		}
	}
	s.reports[r.ID] = memoryEntry{report: r, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryReportStore) Get(_ context.Context, id string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.reports[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, domain.ErrReportNotFound
	}
	return e.report, nil
}
