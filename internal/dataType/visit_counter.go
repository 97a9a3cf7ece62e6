package dataType

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// VisitCounter tracks per-key request counts over a sliding window of
// one-second segments. Hosts feed it from their request handler and ask
// for the last-minute total when building a RequestContext.

type visitSegment struct {
	timestamp int64
	count     int64
}

type visitElement struct {
	segments    []visitSegment
	segSize     int64
	lastUpdated int64
}

func newVisitElement(segments int) *visitElement {
	return &visitElement{
		segments:    make([]visitSegment, segments),
		segSize:     int64(segments),
		lastUpdated: time.Now().Unix(),
	}
}

func (e *visitElement) add(ts int64, value int64) {
	idx := ts % e.segSize
	if e.segments[idx].timestamp != ts {
		e.segments[idx].timestamp = ts
		e.segments[idx].count = value
	} else {
		e.segments[idx].count += value
	}
	e.lastUpdated = ts
}

func (e *visitElement) query(lastN int64, now int64) int64 {
	var sum int64
	if lastN > e.segSize {
		lastN = e.segSize
	}
	for i := int64(0); i < lastN; i++ {
		sec := now - lastN + 1 + i
		idx := sec % e.segSize
		if e.segments[idx].timestamp == sec {
			sum += e.segments[idx].count
		}
	}
	return sum
}

type visitShard struct {
	mu       sync.RWMutex
	counters map[uint64]*visitElement
}

func newVisitShard() *visitShard {
	return &visitShard{counters: make(map[uint64]*visitElement)}
}

// VisitCounter is safe for concurrent use. Keys are xxhash-distributed
// across shards so hot paths contend on at most one shard lock.
type VisitCounter struct {
	shards     []*visitShard
	shardCount uint64
	segSize    int64
}

// NewVisitCounter creates a counter with the given shard count and
// window size in seconds.
func NewVisitCounter(shardCount int, windowSeconds int64) *VisitCounter {
	vc := &VisitCounter{
		shards:     make([]*visitShard, shardCount),
		shardCount: uint64(shardCount),
		segSize:    windowSeconds,
	}
	for i := 0; i < shardCount; i++ {
		vc.shards[i] = newVisitShard()
	}
	return vc
}

func (vc *VisitCounter) getShard(hashKey uint64) *visitShard {
	return vc.shards[hashKey%vc.shardCount]
}

// Add records value hits for key at the current second.
func (vc *VisitCounter) Add(key string, value int64) {
	now := time.Now().Unix()
	hashKey := xxhash.Sum64String(key)
	shard := vc.getShard(hashKey)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	elem, exists := shard.counters[hashKey]
	if !exists {
		elem = newVisitElement(int(vc.segSize))
		shard.counters[hashKey] = elem
	}
	elem.add(now, value)
}

// Query returns the total hits for key over the last lastN seconds.
func (vc *VisitCounter) Query(key string, lastN int64) int64 {
	now := time.Now().Unix()
	hashKey := xxhash.Sum64String(key)
	shard := vc.getShard(hashKey)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if elem, exists := shard.counters[hashKey]; exists {
		return elem.query(lastN, now)
	}
	return 0
}

// PerMinute returns the hit count for key over the last 60 seconds,
// the unit the bot classifier's frequency signal expects.
func (vc *VisitCounter) PerMinute(key string) int64 {
	return vc.Query(key, 60)
}

// Reset drops all state for key.
func (vc *VisitCounter) Reset(key string) {
	hashKey := xxhash.Sum64String(key)
	shard := vc.getShard(hashKey)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.counters, hashKey)
}

// GC removes keys idle for longer than the window.
func (vc *VisitCounter) GC() {
	now := time.Now().Unix()
	expireThreshold := now - vc.segSize
	for _, shard := range vc.shards {
		shard.mu.Lock()
		for key, elem := range shard.counters {
			if elem.lastUpdated < expireThreshold {
				delete(shard.counters, key)
			}
		}
		shard.mu.Unlock()
	}
}

// StartVisitCounterGC runs GC on counter every interval until stopCh closes.
func StartVisitCounterGC(counter *VisitCounter, interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			counter.GC()
		case <-stopCh:
			return
		}
	}
}
