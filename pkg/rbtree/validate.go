package rbtree

import (
	"errors"
	"fmt"
	"math"
)

// Invariant violations reported by Validate.
var (
	ErrRedRoot       = errors.New("root is red")
	ErrRedChild      = errors.New("red node has a red child")
	ErrRedSentinel   = errors.New("sentinel is red")
	ErrSentinelShape = errors.New("sentinel has children")
	ErrBlackHeight   = errors.New("black heights differ")
	ErrKeyOrder      = errors.New("keys are out of order")
	ErrParentLink    = errors.New("parent link does not match child link")
	ErrCountMismatch = errors.New("stored count does not match live nodes")
)

// Node colors as exported by Snapshot.
const (
	ColorRed   = "red"
	ColorBlack = "black"
)

// Snapshot is a detached copy of the live part of the tree.
// Nil children stand for sentinels.
type Snapshot struct {
	Left  *Snapshot `json:"left,omitempty"  yaml:"left,omitempty"`
	Right *Snapshot `json:"right,omitempty" yaml:"right,omitempty"`
	Color string    `json:"color"           yaml:"color"`
	Key   int32     `json:"key"             yaml:"key"`
}

// Red reports whether the node is red.
func (snap *Snapshot) Red() bool {
	return snap.Color == ColorRed
}

// Snapshot copies the tree structure. It returns nil for an empty tree.
func (tree *RBTree) Snapshot() *Snapshot {
	alloc := tree.storage()

	var build func(nodeIdx uint32) *Snapshot

	build = func(nodeIdx uint32) *Snapshot {
		if alloc[nodeIdx].sentinel {
			return nil
		}

		color := ColorBlack
		if isRed(nodeIdx, alloc) {
			color = ColorRed
		}

		return &Snapshot{
			Key:   alloc[nodeIdx].key,
			Color: color,
			Left:  build(alloc[nodeIdx].left),
			Right: build(alloc[nodeIdx].right),
		}
	}

	return build(tree.root)
}

// Validate checks every red-black and search-tree invariant together with the
// parent links and the stored count. It returns the first violation found.
func (tree *RBTree) Validate() error {
	alloc := tree.storage()

	if alloc[tree.root].parent != 0 {
		return fmt.Errorf("%w: root has parent %d", ErrParentLink, alloc[tree.root].parent)
	}

	if isRed(tree.root, alloc) {
		return ErrRedRoot
	}

	live := 0

	_, err := validateSubtree(tree.root, alloc, math.MinInt64, math.MaxInt64, &live)
	if err != nil {
		return err
	}

	if live != tree.count {
		return fmt.Errorf("%w: %d live, %d stored", ErrCountMismatch, live, tree.count)
	}

	return nil
}

// validateSubtree returns the black height of nodeIdx. Keys must lie strictly inside (low, high).
func validateSubtree(nodeIdx uint32, alloc []node, low, high int64, live *int) (int, error) {
	nd := alloc[nodeIdx]

	if nd.sentinel {
		if nd.color != black {
			return 0, fmt.Errorf("%w: slot %d", ErrRedSentinel, nodeIdx)
		}

		if nd.left != 0 || nd.right != 0 {
			return 0, fmt.Errorf("%w: slot %d", ErrSentinelShape, nodeIdx)
		}

		return 0, nil
	}

	*live++

	if int64(nd.key) <= low || int64(nd.key) >= high {
		return 0, fmt.Errorf("%w: key %d outside (%d, %d)", ErrKeyOrder, nd.key, low, high)
	}

	heights := [2]int{}

	for side, child := range [2]uint32{nd.left, nd.right} {
		if alloc[child].parent != nodeIdx {
			return 0, fmt.Errorf("%w: slot %d under key %d", ErrParentLink, child, nd.key)
		}

		if nd.color == red && isRed(child, alloc) {
			return 0, fmt.Errorf("%w: key %d", ErrRedChild, nd.key)
		}

		childLow, childHigh := low, int64(nd.key)
		if side == 1 {
			childLow, childHigh = int64(nd.key), high
		}

		height, err := validateSubtree(child, alloc, childLow, childHigh, live)
		if err != nil {
			return 0, err
		}

		if !isRed(child, alloc) {
			height++
		}

		heights[side] = height
	}

	if heights[0] != heights[1] {
		return 0, fmt.Errorf("%w: key %d has %d left, %d right", ErrBlackHeight, nd.key, heights[0], heights[1])
	}

	return heights[0], nil
}

// Height returns the number of live nodes on the longest root-to-leaf path.
func (tree *RBTree) Height() int {
	alloc := tree.storage()

	var height func(nodeIdx uint32) int

	height = func(nodeIdx uint32) int {
		if alloc[nodeIdx].sentinel {
			return 0
		}

		return 1 + max(height(alloc[nodeIdx].left), height(alloc[nodeIdx].right))
	}

	return height(tree.root)
}

// BlackHeight returns the number of black nodes below the root on any path down
// to a sentinel, the sentinel included. An empty tree has black height 0.
func (tree *RBTree) BlackHeight() int {
	alloc := tree.storage()
	height := 0

	for nodeIdx := tree.root; !alloc[nodeIdx].sentinel; {
		nodeIdx = alloc[nodeIdx].left
		if !isRed(nodeIdx, alloc) {
			height++
		}
	}

	return height
}
