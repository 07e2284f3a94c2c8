package rbtree

// rotateDirection performs a tree rotation in the specified direction.
// IsLeft=true performs left rotation, isLeft=false performs right rotation.
// Only the local links are updated; the tree root is the caller's business.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func rotateDirection(pivot uint32, isLeft bool, alloc []node) {
	// Get the child in the opposite direction of rotation.
	var child uint32
	if isLeft {
		child = alloc[pivot].right
	} else {
		child = alloc[pivot].left
	}

	doAssert(!alloc[child].sentinel)

	// Move the inner subtree. It always exists: sentinels are real slots.
	var innerSubtree uint32
	if isLeft {
		innerSubtree = alloc[child].left
		alloc[pivot].right = innerSubtree
	} else {
		innerSubtree = alloc[child].right
		alloc[pivot].left = innerSubtree
	}

	alloc[innerSubtree].parent = pivot

	// Update parent links.
	parent := alloc[pivot].parent
	alloc[child].parent = parent

	if parent != 0 {
		if alloc[parent].left == pivot {
			alloc[parent].left = child
		} else {
			alloc[parent].right = child
		}
	}

	// Complete the rotation.
	if isLeft {
		alloc[child].left = pivot
	} else {
		alloc[child].right = pivot
	}

	alloc[pivot].parent = child
}

func rotateLeft(nodeIdx uint32, alloc []node) {
	rotateDirection(nodeIdx, true, alloc)
}

func rotateRight(nodeIdx uint32, alloc []node) {
	rotateDirection(nodeIdx, false, alloc)
}

// rotate rotates around pivot and moves the root reference when pivot was the root.
func (tree *RBTree) rotate(pivot uint32, isLeft bool) {
	alloc := tree.storage()

	if isLeft {
		rotateLeft(pivot, alloc)
	} else {
		rotateRight(pivot, alloc)
	}

	if tree.root == pivot {
		tree.root = alloc[pivot].parent
	}

	tree.stats.Rotations++
}
