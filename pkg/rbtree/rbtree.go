// Package rbtree implements an ordered set of int32 keys on top of a red-black
// tree whose nodes live in an index-addressed arena.
//
// Empty subtrees are represented by real sentinel slots rather than a shared nil,
// so every live node always has exactly two children. Insertion promotes a sentinel
// to a live node in place; deletion demotes a live node back to a sentinel.
package rbtree

import (
	"fmt"
	"math"
)

const (
	red               = false
	black             = true
	negativeLimitNode = math.MaxUint32
)

type node struct {
	key                 int32
	parent, left, right uint32
	color               bool // Black or red.
	sentinel            bool
}

func (nd *node) flags() uint32 {
	var flags uint32

	if nd.color == black {
		flags |= flagBlack
	}

	if nd.sentinel {
		flags |= flagSentinel
	}

	return flags
}

func (nd *node) setFlags(flags uint32) {
	nd.color = flags&flagBlack != 0
	nd.sentinel = flags&flagSentinel != 0
}

// Stats counts the structural work performed by a tree since its creation.
type Stats struct {
	// Rotations is the number of single rotations.
	Rotations uint64
	// InsertFixupSteps is the number of insert repair iterations.
	InsertFixupSteps uint64
	// RemoveFixupSteps is the number of remove repair iterations.
	RemoveFixupSteps uint64
}

// RBTree is a red-black tree storing a set of distinct int32 keys.
//
// A tree is not safe for concurrent use.
type RBTree struct {
	// Nodes allocator.
	allocator *Allocator

	// Root of the tree. Always a valid slot; a sentinel when the tree is empty.
	root uint32

	// Number of live nodes under root, including the root.
	count int

	stats Stats
}

// New creates an empty tree backed by a fresh unbounded allocator.
func New() *RBTree {
	tree, err := NewRBTree(NewAllocator())
	doAssert(err == nil)

	return tree
}

// NewRBTree creates a new red-black binary tree whose nodes come from allocator.
func NewRBTree(allocator *Allocator) (*RBTree, error) {
	root, err := allocator.mallocSentinel(0)
	if err != nil {
		return nil, fmt.Errorf("allocate root: %w", err)
	}

	return &RBTree{allocator: allocator, root: root}, nil
}

func (tree *RBTree) storage() []node {
	if tree.allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	return tree.allocator.storage
}

// Allocator returns the bound nodes allocator.
func (tree *RBTree) Allocator() *Allocator {
	return tree.allocator
}

// Len returns the number of elements in the tree.
func (tree *RBTree) Len() int {
	return tree.count
}

// Stats returns the structural work counters.
func (tree *RBTree) Stats() Stats {
	return tree.stats
}

// Contains reports whether key is stored in the tree.
func (tree *RBTree) Contains(key int32) bool {
	return tree.find(key) != 0
}

// find returns the live node holding key, or 0.
func (tree *RBTree) find(key int32) uint32 {
	alloc := tree.storage()
	cursor := tree.root

	for !alloc[cursor].sentinel {
		switch {
		case key == alloc[cursor].key:
			return cursor
		case key > alloc[cursor].key:
			cursor = alloc[cursor].right
		default:
			cursor = alloc[cursor].left
		}
	}

	return 0
}

// CloneShallow performs a shallow copy of the tree - the nodes are assumed to already exist in the allocator.
func (tree *RBTree) CloneShallow(allocator *Allocator) *RBTree {
	clone := *tree
	clone.allocator = allocator

	return &clone
}

// CloneDeep performs a deep copy of the tree - the nodes are created from scratch.
// On allocation failure the nodes taken from allocator are given back.
func (tree *RBTree) CloneDeep(allocator *Allocator) (*RBTree, error) {
	origin := tree.storage()
	taken := make([]uint32, 0, 2*tree.count+1)

	var copyNode func(src, parent uint32) (uint32, error)

	copyNode = func(src, parent uint32) (uint32, error) {
		idx, err := allocator.malloc()
		if err != nil {
			return 0, err
		}

		taken = append(taken, idx)
		cloned := node{key: origin[src].key, color: origin[src].color, sentinel: origin[src].sentinel, parent: parent}

		if !cloned.sentinel {
			cloned.left, err = copyNode(origin[src].left, idx)
			if err != nil {
				return 0, err
			}

			cloned.right, err = copyNode(origin[src].right, idx)
			if err != nil {
				return 0, err
			}
		}

		allocator.storage[idx] = cloned

		return idx, nil
	}

	root, err := copyNode(tree.root, 0)
	if err != nil {
		for _, idx := range taken {
			allocator.free(idx)
		}

		return nil, fmt.Errorf("clone tree: %w", err)
	}

	return &RBTree{allocator: allocator, root: root, count: tree.count}, nil
}

// Erase removes all the nodes from the tree.
func (tree *RBTree) Erase() {
	alloc := tree.storage()
	stack := []uint32{}

	if !alloc[tree.root].sentinel {
		stack = append(stack, alloc[tree.root].left, alloc[tree.root].right)
	}

	for len(stack) > 0 {
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !alloc[nd].sentinel {
			stack = append(stack, alloc[nd].left, alloc[nd].right)
		}

		tree.allocator.free(nd)
	}

	alloc[tree.root] = node{color: black, sentinel: true}
	tree.count = 0
}

func doAssert(condition bool) {
	if !condition {
		panic("rbtree internal assertion failed")
	}
}
