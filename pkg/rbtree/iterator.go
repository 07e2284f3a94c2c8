package rbtree

import (
	"iter"
	"slices"
)

// Iterator allows scanning tree elements in sort order.
//
// Deletion copies keys between nodes, so any Insert or Delete invalidates every
// outstanding iterator.
type Iterator struct {
	tree *RBTree
	node uint32
}

// Min creates an iterator that points to the minimum item in the tree.
// If the tree is empty, returns Limit().
func (tree *RBTree) Min() Iterator {
	alloc := tree.storage()
	if alloc[tree.root].sentinel {
		return Iterator{tree, 0}
	}

	return Iterator{tree, leftmost(tree.root, alloc)}
}

// Max creates an iterator that points at the maximum item in the tree.
//
// If the tree is empty, returns NegativeLimit().
func (tree *RBTree) Max() Iterator {
	alloc := tree.storage()
	if alloc[tree.root].sentinel {
		return Iterator{tree, negativeLimitNode}
	}

	return Iterator{tree, rightmost(tree.root, alloc)}
}

// Limit creates an iterator that points beyond the maximum item in the tree.
func (tree *RBTree) Limit() Iterator {
	return Iterator{tree, 0}
}

// NegativeLimit creates an iterator that points before the minimum item in the tree.
func (tree *RBTree) NegativeLimit() Iterator {
	return Iterator{tree, negativeLimitNode}
}

// FindGE finds the smallest element N such that N >= Key, and returns the
// iterator pointing to the element. If no such element is found,
// returns tree.Limit().
func (tree *RBTree) FindGE(key int32) Iterator {
	alloc := tree.storage()
	best := uint32(0)
	cursor := tree.root

	for !alloc[cursor].sentinel {
		switch {
		case key == alloc[cursor].key:
			return Iterator{tree, cursor}
		case key < alloc[cursor].key:
			best = cursor
			cursor = alloc[cursor].left
		default:
			cursor = alloc[cursor].right
		}
	}

	return Iterator{tree, best}
}

// FindLE finds the largest element N such that N <= Key, and returns the
// iterator pointing to the element. If no such element is found,
// returns tree.NegativeLimit().
func (tree *RBTree) FindLE(key int32) Iterator {
	alloc := tree.storage()
	best := uint32(negativeLimitNode)
	cursor := tree.root

	for !alloc[cursor].sentinel {
		switch {
		case key == alloc[cursor].key:
			return Iterator{tree, cursor}
		case key > alloc[cursor].key:
			best = cursor
			cursor = alloc[cursor].right
		default:
			cursor = alloc[cursor].left
		}
	}

	return Iterator{tree, best}
}

// All returns the keys in ascending order. Every call starts a fresh walk.
func (tree *RBTree) All() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for it := tree.Min(); !it.Limit(); it = it.Next() {
			if !yield(it.Key()) {
				return
			}
		}
	}
}

// Backward returns the keys in descending order.
func (tree *RBTree) Backward() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for it := tree.Max(); !it.NegativeLimit(); it = it.Prev() {
			if !yield(it.Key()) {
				return
			}
		}
	}
}

// Keys returns the stored keys in ascending order.
func (tree *RBTree) Keys() []int32 {
	return slices.Collect(tree.All())
}

// Equal checks for the underlying nodes equality.
func (it Iterator) Equal(other Iterator) bool {
	return it.node == other.node
}

// Limit checks if the iterator points beyond the max element in the tree.
func (it Iterator) Limit() bool {
	return it.node == 0
}

// NegativeLimit checks if the iterator points before the minimum element in the tree.
func (it Iterator) NegativeLimit() bool {
	return it.node == negativeLimitNode
}

// Key returns the current element.
//
// REQUIRES: !it.Limit() && !it.NegativeLimit().
func (it Iterator) Key() int32 {
	doAssert(!it.Limit() && !it.NegativeLimit())

	return it.tree.storage()[it.node].key
}

// Next creates a new iterator that points to the successor of the current element.
//
// REQUIRES: !it.Limit().
func (it Iterator) Next() Iterator {
	doAssert(!it.Limit())

	if it.NegativeLimit() {
		return it.tree.Min()
	}

	return Iterator{it.tree, doNext(it.node, it.tree.storage())}
}

// Prev creates a new iterator that points to the predecessor of the current
// node.
//
// REQUIRES: !it.NegativeLimit().
func (it Iterator) Prev() Iterator {
	doAssert(!it.NegativeLimit())

	if it.Limit() {
		return it.tree.Max()
	}

	return Iterator{it.tree, doPrev(it.node, it.tree.storage())}
}

// Return the minimum node that's larger than N. Return 0 if no such
// node is found.
func doNext(nodeIdx uint32, allocator []node) uint32 {
	if !allocator[allocator[nodeIdx].right].sentinel {
		return leftmost(allocator[nodeIdx].right, allocator)
	}

	for allocator[nodeIdx].parent != 0 {
		parentIdx := allocator[nodeIdx].parent
		if isLeftChild(nodeIdx, allocator) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return 0
}

// Return the maximum node that's smaller than N. Return negativeLimitNode if no
// such node is found.
func doPrev(nodeIdx uint32, allocator []node) uint32 {
	if !allocator[allocator[nodeIdx].left].sentinel {
		return rightmost(allocator[nodeIdx].left, allocator)
	}

	for allocator[nodeIdx].parent != 0 {
		parentIdx := allocator[nodeIdx].parent
		if !isLeftChild(nodeIdx, allocator) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return negativeLimitNode
}
