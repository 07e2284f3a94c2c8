package rbtree

// Delete removes key from the set. It returns false when the key is absent.
func (tree *RBTree) Delete(key int32) bool {
	target := tree.find(key)
	if target == 0 {
		return false
	}

	alloc := tree.storage()

	// Two live children: take over the successor's key and delete the successor instead.
	if !isSentinel(alloc[target].left, alloc) && !isSentinel(alloc[target].right, alloc) {
		succ := leftmost(alloc[target].right, alloc)
		alloc[target].key = alloc[succ].key
		target = succ
	}

	left, right := alloc[target].left, alloc[target].right

	// A red node here always has two sentinel children.
	if isRed(target, alloc) {
		doAssert(isSentinel(left, alloc) && isSentinel(right, alloc))
		tree.demote(target)
		tree.count--

		return true
	}

	// A black node with a single live child: that child is red with two sentinels.
	if !isSentinel(left, alloc) || !isSentinel(right, alloc) {
		child := left
		if isSentinel(left, alloc) {
			child = right
		}

		doAssert(isRed(child, alloc))
		alloc[target].key = alloc[child].key
		tree.demote(child)
		tree.count--

		return true
	}

	if target == tree.root {
		tree.demote(target)
		tree.count = 0

		return true
	}

	// A black leaf leaves its path one black short.
	tree.demote(target)
	tree.count--
	tree.removeFixup(target)

	return true
}

// demote turns a live node with two sentinel children back into a sentinel.
func (tree *RBTree) demote(nodeIdx uint32) {
	alloc := tree.storage()
	left, right := alloc[nodeIdx].left, alloc[nodeIdx].right
	doAssert(isSentinel(left, alloc) && isSentinel(right, alloc))

	tree.allocator.free(left)
	tree.allocator.free(right)
	alloc[nodeIdx] = node{parent: alloc[nodeIdx].parent, color: black, sentinel: true}
}

// removeFixup walks upwards from a node whose paths miss one black node.
// Sibling and nephews are read again after every rotation.
func (tree *RBTree) removeFixup(nodeIdx uint32) {
	alloc := tree.storage()
	cursor := nodeIdx

	for cursor != tree.root {
		tree.stats.RemoveFixupSteps++

		towardLeft := isLeftChild(cursor, alloc)
		parent := alloc[cursor].parent

		// Case 1: red sibling, rotate to get a black one.
		sib := sibling(cursor, alloc)
		if isRed(sib, alloc) {
			alloc[parent].color = red
			alloc[sib].color = black
			tree.rotate(parent, towardLeft)
		}

		// Case 2: red near nephew, rotate it into the far position.
		near := nearNephew(cursor, alloc)
		if isRed(near, alloc) {
			sib = sibling(cursor, alloc)
			alloc[sib].color = red
			alloc[near].color = black
			tree.rotate(sib, !towardLeft)
		}

		// Case 3: red far nephew, borrow a black from the sibling side.
		far := farNephew(cursor, alloc)
		if isRed(far, alloc) {
			sib = sibling(cursor, alloc)
			alloc[parent].color, alloc[sib].color = alloc[sib].color, alloc[parent].color
			tree.rotate(parent, towardLeft)
			alloc[far].color = black

			return
		}

		sib = sibling(cursor, alloc)

		// Case 4: black nephews, red parent.
		if isRed(parent, alloc) {
			alloc[sib].color = red
			alloc[parent].color = black

			return
		}

		// Case 5: everything black, move the deficit up.
		alloc[sib].color = red
		cursor = parent
	}
}
