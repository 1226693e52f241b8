// internal/cache/cache.go
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math"
	"sync"
	"time"

	"fitforge/internal/models"
)

// Cache is an in-memory TTL cache for validated plan payloads, keyed by
// plan type plus the quiz answers that produced the plan. Losing the cache
// is safe; a miss only costs one provider call.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	payload      json.RawMessage
	planType     models.PlanType
	createdAt    time.Time
	expiresAt    time.Time
	hits         int
	lastAccessed time.Time
}

// Stats is a point-in-time snapshot for the operational endpoint.
type Stats struct {
	TotalItems     int     `json:"total_items"`
	MealPlans      int     `json:"meal_plans"`
	WorkoutPlans   int     `json:"workout_plans"`
	TotalHits      int     `json:"total_hits"`
	MemoryMB       float64 `json:"memory_mb"`
	AvgHitsPerItem float64 `json:"avg_hits_per_item"`
}

// New builds a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key derives the stable cache key for a plan request. Answers are
// round-tripped through a map so that encoding/json re-emits object keys
// in sorted order; two submissions that differ only in key order hash
// identically.
func Key(planType models.PlanType, answers models.QuizAnswers) (string, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return "", err
	}
	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(map[string]any{
		"plan_type": string(planType),
		"answers":   normalized,
	})
	if err != nil {
		return "", err
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the cached payload for the key, or false on a miss. Expired
// entries are evicted on the spot.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	e.hits++
	e.lastAccessed = now
	return e.payload, true
}

// Set stores a payload under the key, resetting any previous entry's TTL
// and hit count.
func (c *Cache) Set(key string, planType models.PlanType, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = &entry{
		payload:      payload,
		planType:     planType,
		createdAt:    now,
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	}
}

// Invalidate removes the entry for the key, reporting whether one existed.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Sweep removes all expired entries and returns how many were dropped.
// Run periodically so that entries no Get ever touches still get evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StatsSnapshot sweeps expired entries and reports totals. Memory is a
// rough estimate from payload sizes.
func (c *Cache) StatsSnapshot() Stats {
	c.Sweep()

	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Stats
	bytes := 0
	for _, e := range c.entries {
		s.TotalItems++
		s.TotalHits += e.hits
		bytes += len(e.payload)
		switch e.planType {
		case models.PlanTypeMeal:
			s.MealPlans++
		case models.PlanTypeWorkout:
			s.WorkoutPlans++
		}
	}
	s.MemoryMB = round2(float64(bytes) / (1 << 20))
	if s.TotalItems > 0 {
		s.AvgHitsPerItem = round2(float64(s.TotalHits) / float64(s.TotalItems))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
