package rbtree

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/rbset/pkg/safeconv"
)

// ErrAllocatorExhausted is returned when the allocator cannot hand out another node.
var ErrAllocatorExhausted = errors.New("node allocator exhausted")

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor for storage.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

// Hibernated column layout.
const (
	columnKey = iota
	columnLeft
	columnParent
	columnRight
	columnFlags
	nodeColumns
)

const (
	flagBlack    = 1
	flagSentinel = 2
)

// Allocator is the allocator for nodes in a RBTree.
//
// Slot 0 is reserved and stands for "no node"; every other slot is either in use
// (a live node or a sentinel leaf) or sits in the free list.
type Allocator struct {
	storage        []node
	gaps           map[uint32]bool
	hibernatedData [nodeColumns + 1][]byte
	// HibernationThreshold is the minimal storage length Hibernate compresses.
	HibernationThreshold int
	// MaxNodes caps the number of slots in use, slot 0 excluded. Zero means no cap.
	MaxNodes             int
	hibernatedStorageLen int
	hibernatedGapsLen    int
}

// NewAllocator creates a new allocator for RBTree's nodes.
func NewAllocator() *Allocator {
	return &Allocator{
		storage: []node{},
		gaps:    map[uint32]bool{},
	}
}

// Size returns the currently allocated size.
func (allocator *Allocator) Size() int {
	return len(allocator.storage)
}

// Used returns the number of nodes contained in the allocator.
func (allocator *Allocator) Used() int {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	return len(allocator.storage) - len(allocator.gaps)
}

// Hibernated reports whether the node storage is currently compressed.
func (allocator *Allocator) Hibernated() bool {
	return allocator.storage == nil
}

// HibernatedSize returns the number of compressed bytes held while hibernated.
func (allocator *Allocator) HibernatedSize() int {
	total := 0

	for _, data := range allocator.hibernatedData {
		total += len(data)
	}

	return total
}

// Clone copies an existing RBTree allocator.
func (allocator *Allocator) Clone() *Allocator {
	if allocator.storage == nil {
		panic("cannot clone a hibernated allocator")
	}

	newAllocator := &Allocator{
		HibernationThreshold: allocator.HibernationThreshold,
		MaxNodes:             allocator.MaxNodes,
		storage:              make([]node, len(allocator.storage), cap(allocator.storage)),
		gaps:                 map[uint32]bool{},
	}
	copy(newAllocator.storage, allocator.storage)
	maps.Copy(newAllocator.gaps, allocator.gaps)

	return newAllocator
}

// Hibernate compresses the allocated memory.
func (allocator *Allocator) Hibernate() {
	if allocator.hibernatedStorageLen > 0 {
		panic("cannot hibernate an already hibernated Allocator")
	}

	if len(allocator.storage) < allocator.HibernationThreshold {
		return
	}

	allocator.hibernatedStorageLen = len(allocator.storage)
	if allocator.hibernatedStorageLen == 0 {
		allocator.storage = nil

		return
	}

	buffers := [nodeColumns][]uint32{}

	for idx := range buffers {
		buffers[idx] = make([]uint32, len(allocator.storage))
	}

	// We deinterleave to achieve a better compression ratio.
	for idx, nd := range allocator.storage {
		buffers[columnKey][idx] = uint32(nd.key) //nolint:gosec // bit-preserving round trip.
		buffers[columnLeft][idx] = nd.left
		buffers[columnParent][idx] = nd.parent
		buffers[columnRight][idx] = nd.right
		buffers[columnFlags][idx] = nd.flags()
	}

	allocator.storage = nil

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 1)

	for idx, buffer := range buffers {
		go func(bufIdx int, buf []uint32) {
			allocator.hibernatedData[bufIdx] = CompressUInt32Slice(buf)
			buffers[bufIdx] = nil

			wg.Done()
		}(idx, buffer)
	}

	// Compress gaps.
	go func() {
		if len(allocator.gaps) > 0 {
			allocator.hibernatedGapsLen = len(allocator.gaps)

			gapsBuffer := slices.Sorted(maps.Keys(allocator.gaps))
			DeltaEncodeUInt32Slice(gapsBuffer)
			allocator.hibernatedData[nodeColumns] = CompressUInt32Slice(gapsBuffer)
		}

		allocator.gaps = nil

		wg.Done()
	}()

	wg.Wait()
}

// Boot performs the opposite of Hibernate() - decompresses and restores the allocated memory.
func (allocator *Allocator) Boot() {
	if allocator.storage == nil && allocator.hibernatedStorageLen == 0 {
		allocator.storage = []node{}
		allocator.gaps = map[uint32]bool{}

		return
	}

	if allocator.hibernatedStorageLen == 0 {
		// Not hibernated.
		return
	}

	allocator.gaps = map[uint32]bool{}
	buffers := [nodeColumns][]uint32{}
	errs := [nodeColumns + 1]error{}

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 1)

	for idx := range buffers {
		go func(bufIdx int) {
			buffers[bufIdx] = make([]uint32, allocator.hibernatedStorageLen)
			errs[bufIdx] = DecompressUInt32Slice(allocator.hibernatedData[bufIdx], buffers[bufIdx])
			allocator.hibernatedData[bufIdx] = nil

			wg.Done()
		}(idx)
	}

	go func() {
		if allocator.hibernatedGapsLen > 0 {
			buffer := make([]uint32, allocator.hibernatedGapsLen)
			errs[nodeColumns] = DecompressUInt32Slice(allocator.hibernatedData[nodeColumns], buffer)
			DeltaDecodeUInt32Slice(buffer)

			for _, key := range buffer {
				allocator.gaps[key] = true
			}

			allocator.hibernatedData[nodeColumns] = nil
			allocator.hibernatedGapsLen = 0
		}

		wg.Done()
	}()

	wg.Wait()

	joinErr := errors.Join(errs[:]...)
	if joinErr != nil {
		panic(fmt.Sprintf("corrupted hibernated allocator: %v", joinErr))
	}

	capSize := (allocator.hibernatedStorageLen * growCapacityNumerator) / growCapacityDenominator
	allocator.storage = make([]node, allocator.hibernatedStorageLen, capSize)

	for idx := range allocator.storage {
		nd := &allocator.storage[idx]
		nd.key = int32(buffers[columnKey][idx]) //nolint:gosec // bit-preserving round trip.
		nd.left = buffers[columnLeft][idx]
		nd.parent = buffers[columnParent][idx]
		nd.right = buffers[columnRight][idx]
		nd.setFlags(buffers[columnFlags][idx])
	}

	allocator.hibernatedStorageLen = 0
}

func (allocator *Allocator) malloc() (uint32, error) {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if allocator.MaxNodes > 0 && allocator.inUse() >= allocator.MaxNodes {
		return 0, fmt.Errorf("%w: limit of %d nodes reached", ErrAllocatorExhausted, allocator.MaxNodes)
	}

	if len(allocator.gaps) > 0 {
		var key uint32

		for key = range allocator.gaps {
			break
		}

		delete(allocator.gaps, key)

		return key, nil
	}

	nodeLen := len(allocator.storage)
	if nodeLen == 0 {
		// Zero is reserved.
		allocator.storage = append(allocator.storage, node{})
		nodeLen = 1
	}

	if nodeLen >= negativeLimitNode-1 {
		// [math.MaxUint32] is reserved.
		return 0, fmt.Errorf("%w: uint32 index space used up", ErrAllocatorExhausted)
	}

	allocator.storage = append(allocator.storage, node{})

	return safeconv.MustIntToUint32(nodeLen), nil
}

// mallocSentinel hands out a fresh black leaf.
func (allocator *Allocator) mallocSentinel(parent uint32) (uint32, error) {
	idx, err := allocator.malloc()
	if err != nil {
		return 0, err
	}

	allocator.storage[idx] = node{parent: parent, color: black, sentinel: true}

	return idx, nil
}

func (allocator *Allocator) free(nodeIdx uint32) {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if nodeIdx == 0 {
		panic("node #0 is special and cannot be deallocated")
	}

	_, exists := allocator.gaps[nodeIdx]
	doAssert(!exists)

	allocator.storage[nodeIdx] = node{}
	allocator.gaps[nodeIdx] = true
}

// inUse counts occupied slots without the reserved one.
func (allocator *Allocator) inUse() int {
	used := len(allocator.storage) - len(allocator.gaps)
	if used > 0 {
		used--
	}

	return used
}
