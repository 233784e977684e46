package search

import "sync"

// relevanceShardCount is the shard count the server uses for parallel
// relevance accumulation.
const relevanceShardCount = 50

type concurrentMapShard struct {
	mu   sync.Mutex
	data map[int]float64
}

// ConcurrentMap is a fixed-shard map from int keys to float64 values.
// A key always lands on the shard uint64(key) mod S, so accesses to distinct
// shards proceed independently, and only one shard lock is ever held at
// a time.
type ConcurrentMap struct {
	shards []concurrentMapShard
}

// NewConcurrentMap builds a map with shardCount independent shards.
func NewConcurrentMap(shardCount int) *ConcurrentMap {
	shards := make([]concurrentMapShard, shardCount)
	for i := range shards {
		shards[i].data = make(map[int]float64)
	}
	return &ConcurrentMap{shards: shards}
}

func (m *ConcurrentMap) shard(key int) *concurrentMapShard {
	return &m.shards[uint64(key)%uint64(len(m.shards))]
}

// Update runs fn with exclusive access to the value stored under key,
// default-initializing it to 0 when absent. The shard lock is held for
// the duration of fn.
func (m *ConcurrentMap) Update(key int, fn func(value *float64)) {
	sh := m.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	value := sh.data[key]
	fn(&value)
	sh.data[key] = value
}

// Erase removes key from its shard if present.
func (m *ConcurrentMap) Erase(key int) {
	sh := m.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.data, key)
}

// BuildOrdinaryMap merges every shard into a single plain map, locking one
// shard at a time. The union is consistent when no writers are in flight.
func (m *ConcurrentMap) BuildOrdinaryMap() map[int]float64 {
	result := make(map[int]float64)
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		for key, value := range sh.data {
			result[key] = value
		}
		sh.mu.Unlock()
	}
	return result
}
