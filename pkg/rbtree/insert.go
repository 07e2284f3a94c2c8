package rbtree

import "fmt"

// Insert adds key to the set. It returns false when the key is already present,
// in which case the tree is left untouched.
//
// The only error is allocator exhaustion; the tree is unchanged when it happens.
func (tree *RBTree) Insert(key int32) (bool, error) {
	alloc := tree.storage()
	cursor := tree.root

	for !alloc[cursor].sentinel {
		switch {
		case key == alloc[cursor].key:
			return false, nil
		case key > alloc[cursor].key:
			cursor = alloc[cursor].right
		default:
			cursor = alloc[cursor].left
		}
	}

	err := tree.promote(cursor, key)
	if err != nil {
		return false, fmt.Errorf("insert %d: %w", key, err)
	}

	tree.insertFixup(cursor)
	tree.count++

	return true, nil
}

// promote turns the sentinel at nodeIdx into a red node holding key with two fresh sentinels.
// Both leaves are allocated before anything is linked.
func (tree *RBTree) promote(nodeIdx uint32, key int32) error {
	left, err := tree.allocator.mallocSentinel(nodeIdx)
	if err != nil {
		return err
	}

	right, err := tree.allocator.mallocSentinel(nodeIdx)
	if err != nil {
		tree.allocator.free(left)

		return err
	}

	// The arena may have grown.
	alloc := tree.storage()
	nd := &alloc[nodeIdx]
	nd.key = key
	nd.color = red
	nd.sentinel = false
	nd.left = left
	nd.right = right

	return nil
}

// insertFixup restores the red-black properties upwards from a freshly promoted node.
func (tree *RBTree) insertFixup(nodeIdx uint32) {
	alloc := tree.storage()
	cursor := nodeIdx

	for isRed(cursor, alloc) {
		tree.stats.InsertFixupSteps++

		// Case 1: the cursor is the root.
		if cursor == tree.root {
			alloc[cursor].color = black

			return
		}

		// Case 2: the parent is black, nothing is violated.
		parent := alloc[cursor].parent
		if !isRed(parent, alloc) {
			return
		}

		// Case 3: red parent, so the parent is not the root and a grandparent exists.
		grandparent := alloc[parent].parent
		uncleIdx := uncle(cursor, alloc)
		cursorLeft := isLeftChild(cursor, alloc)

		switch {
		case isRed(uncleIdx, alloc):
			// 3a: push the red up.
			alloc[parent].color = black
			alloc[uncleIdx].color = black
			alloc[grandparent].color = red
			cursor = grandparent
		case cursorLeft == isLeftChild(parent, alloc):
			// 3b: outer grandchild, a single rotation resolves it.
			alloc[grandparent].color = red
			alloc[parent].color = black
			tree.rotate(grandparent, !cursorLeft)

			return
		default:
			// 3c: inner grandchild, turn it into 3b.
			tree.rotate(parent, !cursorLeft)
			cursor = parent
		}
	}
}
