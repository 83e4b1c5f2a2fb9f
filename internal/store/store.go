package store

import (
	"sync"
	"time"

	"github.com/stress-monitor/esms/internal/model"
)

// DefaultHistorySize is one hour of readings at one reading per second.
const DefaultHistorySize = 3600

// Store holds the bounded recent history of readings and the registry of
// connected streaming clients. All methods are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	// Circular buffer: readings[(head+i)%capacity] for i in [0, count).
	readings []model.Reading
	head     int
	count    int
	capacity int

	// Total readings ever recorded; never decreases, independent of eviction.
	total uint64

	clients   map[string]struct{}
	startTime time.Time
}

// New creates a store retaining at most capacity readings. A non-positive
// capacity selects DefaultHistorySize.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Store{
		readings:  make([]model.Reading, capacity),
		capacity:  capacity,
		clients:   make(map[string]struct{}),
		startTime: time.Now().UTC(),
	}
}

// Record appends one reading, evicting the oldest when the history is at
// capacity. It never fails; input validation is the caller's concern.
func (s *Store) Record(r model.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++

	if s.count == s.capacity {
		s.head = (s.head + 1) % s.capacity
		s.count--
	}
	s.readings[(s.head+s.count)%s.capacity] = r
	s.count++
}

// Latest returns the most recently recorded reading, if any.
func (s *Store) Latest() (model.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.count == 0 {
		return model.Reading{}, false
	}
	return s.readings[(s.head+s.count-1)%s.capacity], true
}

// Recent returns up to k readings, most recent first.
func (s *Store) Recent(k int) []model.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k > s.count {
		k = s.count
	}
	if k <= 0 {
		return []model.Reading{}
	}

	result := make([]model.Reading, 0, k)
	for i := 0; i < k; i++ {
		result = append(result, s.readings[(s.head+s.count-1-i)%s.capacity])
	}
	return result
}

// WithinLastMinutes returns readings with timestamp at or after now minus the
// given number of minutes, in chronological order. Zero minutes matches only
// readings stamped now or later, which is practically empty.
func (s *Store) WithinLastMinutes(minutes int) []model.Reading {
	if minutes < 0 {
		minutes = 0
	}
	cutoff := time.Now().UTC().Add(-time.Duration(minutes) * time.Minute)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Reading{}
	for i := 0; i < s.count; i++ {
		r := s.readings[(s.head+i)%s.capacity]
		if !r.Timestamp.Before(cutoff) {
			result = append(result, r)
		}
	}
	return result
}

// Range returns readings with timestamps in [start, end], chronological.
func (s *Store) Range(start, end time.Time) []model.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Reading{}
	for i := 0; i < s.count; i++ {
		r := s.readings[(s.head+i)%s.capacity]
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			result = append(result, r)
		}
	}
	return result
}

// Statistics recomputes the aggregate snapshot over the current history.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	snapshot := make([]model.Reading, 0, s.count)
	for i := 0; i < s.count; i++ {
		snapshot = append(snapshot, s.readings[(s.head+i)%s.capacity])
	}
	s.mu.RUnlock()

	return ComputeStatistics(snapshot)
}

// RegisterClient adds a streaming client to the registry. Registering an
// already-registered ID is a no-op.
func (s *Store) RegisterClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[id] = struct{}{}
}

// UnregisterClient removes a streaming client. Unregistering a non-member is
// a no-op.
func (s *Store) UnregisterClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// ClientCount returns the number of registered streaming clients.
func (s *Store) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// TotalReadings returns the monotonic count of readings ever recorded.
func (s *Store) TotalReadings() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Len returns the number of readings currently retained.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// UptimeSeconds returns whole seconds elapsed since the store was created.
func (s *Store) UptimeSeconds() uint64 {
	return uint64(time.Since(s.startTime) / time.Second)
}

// LastReadingTime returns the timestamp of the most recent reading, if any.
func (s *Store) LastReadingTime() (time.Time, bool) {
	r, ok := s.Latest()
	if !ok {
		return time.Time{}, false
	}
	return r.Timestamp, true
}
