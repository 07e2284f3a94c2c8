package rbtree

import (
	"hash/fnv"
	"sync"
)

// minHibernationThreshold is the minimal reasonable default if division results in 0.
const minHibernationThreshold = 1000

// ShardedAllocator spreads many sets over several allocators so that their
// arenas can be hibernated and booted in parallel.
type ShardedAllocator struct {
	shards []*Allocator
}

// NewShardedAllocator creates a new ShardedAllocator with shardCount shards.
// The hibernation threshold and the node cap are split evenly between shards.
func NewShardedAllocator(shardCount, hibernationThreshold, maxNodes int) *ShardedAllocator {
	if shardCount <= 0 {
		shardCount = 1
	}

	shards := make([]*Allocator, shardCount)

	for idx := range shardCount {
		shards[idx] = NewAllocator()

		if hibernationThreshold > 0 {
			shards[idx].HibernationThreshold = hibernationThreshold / shardCount
			if shards[idx].HibernationThreshold == 0 {
				shards[idx].HibernationThreshold = minHibernationThreshold
			}
		}

		if maxNodes > 0 {
			shards[idx].MaxNodes = max(maxNodes/shardCount, 1)
		}
	}

	return &ShardedAllocator{shards: shards}
}

// GetShard returns the allocator shard for the given set name.
func (sa *ShardedAllocator) GetShard(name string) *Allocator {
	hasher := fnv.New32a()
	hasher.Write([]byte(name))

	return sa.shards[hasher.Sum32()%uint32(len(sa.shards))] //nolint:gosec // shard count is small and positive.
}

// NewSet creates an empty set whose nodes live in the shard owning name.
func (sa *ShardedAllocator) NewSet(name string) (*RBTree, error) {
	return NewRBTree(sa.GetShard(name))
}

// Shards returns all underlying allocators.
func (sa *ShardedAllocator) Shards() []*Allocator {
	return sa.shards
}

// Used returns the number of slots in use over all shards.
func (sa *ShardedAllocator) Used() int {
	total := 0

	for _, shard := range sa.shards {
		total += shard.Used()
	}

	return total
}

// HibernatedSize returns the compressed footprint of all shards.
func (sa *ShardedAllocator) HibernatedSize() int {
	total := 0

	for _, shard := range sa.shards {
		total += shard.HibernatedSize()
	}

	return total
}

// Hibernate hibernates all shards in parallel.
func (sa *ShardedAllocator) Hibernate() {
	wg := sync.WaitGroup{}
	wg.Add(len(sa.shards))

	for _, shard := range sa.shards {
		go func(alloc *Allocator) {
			defer wg.Done()

			// Force hibernation even if below threshold by temporarily setting threshold to 0.
			originalThreshold := alloc.HibernationThreshold
			alloc.HibernationThreshold = 0
			alloc.Hibernate()
			alloc.HibernationThreshold = originalThreshold
		}(shard)
	}

	wg.Wait()
}

// Boot boots all shards in parallel.
func (sa *ShardedAllocator) Boot() {
	wg := sync.WaitGroup{}
	wg.Add(len(sa.shards))

	for _, shard := range sa.shards {
		go func(alloc *Allocator) {
			defer wg.Done()

			alloc.Boot()
		}(shard)
	}

	wg.Wait()
}
