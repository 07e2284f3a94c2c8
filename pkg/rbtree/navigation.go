package rbtree

// Internal node attribute accessors.
//
// All of them take the arena slice explicitly; callers must re-read it after any
// allocation since the slice may move.

func isSentinel(nodeIdx uint32, allocator []node) bool {
	return allocator[nodeIdx].sentinel
}

func isRed(nodeIdx uint32, allocator []node) bool {
	return allocator[nodeIdx].color == red
}

func isLeftChild(nodeIdx uint32, allocator []node) bool {
	parent := allocator[nodeIdx].parent

	return parent != 0 && allocator[parent].left == nodeIdx
}

func sibling(nodeIdx uint32, allocator []node) uint32 {
	parent := allocator[nodeIdx].parent
	doAssert(parent != 0)

	if allocator[parent].left == nodeIdx {
		return allocator[parent].right
	}

	return allocator[parent].left
}

func uncle(nodeIdx uint32, allocator []node) uint32 {
	parent := allocator[nodeIdx].parent
	doAssert(parent != 0 && allocator[parent].parent != 0)

	return sibling(parent, allocator)
}

// nearNephew is the sibling's child on the same side as nodeIdx.
func nearNephew(nodeIdx uint32, allocator []node) uint32 {
	sib := sibling(nodeIdx, allocator)
	doAssert(!allocator[sib].sentinel)

	if isLeftChild(nodeIdx, allocator) {
		return allocator[sib].left
	}

	return allocator[sib].right
}

// farNephew is the sibling's child on the opposite side of nodeIdx.
func farNephew(nodeIdx uint32, allocator []node) uint32 {
	sib := sibling(nodeIdx, allocator)
	doAssert(!allocator[sib].sentinel)

	if isLeftChild(nodeIdx, allocator) {
		return allocator[sib].right
	}

	return allocator[sib].left
}

// leftmost descends left until the next step would reach a sentinel.
func leftmost(nodeIdx uint32, allocator []node) uint32 {
	for !allocator[allocator[nodeIdx].left].sentinel {
		nodeIdx = allocator[nodeIdx].left
	}

	return nodeIdx
}

func rightmost(nodeIdx uint32, allocator []node) uint32 {
	for !allocator[allocator[nodeIdx].right].sentinel {
		nodeIdx = allocator[nodeIdx].right
	}

	return nodeIdx
}
