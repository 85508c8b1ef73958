// File: bptree.go
package bptree

import (
	"slices"
	"sync"
)

// DefaultOrder is the fallback branching factor if a user-supplied order is too small.
const DefaultOrder = 4

// Compare orders two keys, returning a negative number, zero or a positive number.
type Compare[K any] func(a, b K) int

// BPlusTree is an ordered map with leaf links for range scans.
// A single RWMutex guards the whole tree: lookups and scans share it,
// Insert and Delete take it exclusively.
type BPlusTree[K any, V any] struct {
	m      sync.RWMutex
	root   *node[K, V]
	cmp    Compare[K]
	order  int
	height int
	size   int
}

// node represents both internal and leaf nodes in the B+Tree.
type node[K any, V any] struct {
	isLeaf   bool
	keys     []K
	children []*node[K, V] // used if !isLeaf
	values   []V           // used if isLeaf
	parent   *node[K, V]
	next     *node[K, V] // leaf-link pointer, for range scans
}

// NewBPlusTree creates a B+Tree with the given order ordered by cmp.
// If the specified order < 3, we fall back to DefaultOrder.
func NewBPlusTree[K any, V any](order int, cmp Compare[K]) *BPlusTree[K, V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[K, V]{
		root:   newLeaf[K, V](order),
		cmp:    cmp,
		order:  order,
		height: 1,
	}
}

func newLeaf[K any, V any](order int) *node[K, V] {
	return &node[K, V]{
		isLeaf: true,
		keys:   make([]K, 0, order+1),
		values: make([]V, 0, order+1),
	}
}

// Height returns the number of levels in the tree.
func (tree *BPlusTree[K, V]) Height() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.height
}

// Len returns the number of keys stored.
func (tree *BPlusTree[K, V]) Len() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.size
}

// findChildIndex determines which child pointer to follow in an internal
// node: the first separator greater than key. Keys equal to a separator live
// in the right subtree.
func (tree *BPlusTree[K, V]) findChildIndex(keys []K, key K) int {
	i, found := slices.BinarySearchFunc(keys, key, tree.cmp)
	if found {
		return i + 1
	}
	return i
}

// findLeaf descends to the leaf that would hold key.
func (tree *BPlusTree[K, V]) findLeaf(key K) *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[tree.findChildIndex(current.keys, key)]
	}
	return current
}

// Search locates the value associated with key.
func (tree *BPlusTree[K, V]) Search(key K) (V, bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	leaf := tree.findLeaf(key)
	if i, found := slices.BinarySearchFunc(leaf.keys, key, tree.cmp); found {
		return leaf.values[i], true
	}
	var zero V
	return zero, false
}

// Insert adds or replaces the value stored under key.
func (tree *BPlusTree[K, V]) Insert(key K, value V) {
	tree.m.Lock()
	defer tree.m.Unlock()

	leaf := tree.findLeaf(key)
	if tree.insertKeyValueInLeaf(leaf, key, value) {
		tree.size++
	}
	if len(leaf.keys) > tree.order {
		tree.splitLeaf(leaf)
	}
}

// Delete removes key and reports whether it was present. Leaves are not
// merged; an emptied leaf stays linked and is skipped by scans.
func (tree *BPlusTree[K, V]) Delete(key K) bool {
	tree.m.Lock()
	defer tree.m.Unlock()

	leaf := tree.findLeaf(key)
	i, found := slices.BinarySearchFunc(leaf.keys, key, tree.cmp)
	if !found {
		return false
	}
	leaf.keys = slices.Delete(leaf.keys, i, i+1)
	leaf.values = slices.Delete(leaf.values, i, i+1)
	tree.size--
	return true
}

// Ascend calls fn for every key in [from, to] in ascending order until fn
// returns false. The tree is read-locked for the duration of the scan, so fn
// must not modify it.
func (tree *BPlusTree[K, V]) Ascend(from, to K, fn func(key K, value V) bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	if tree.cmp(from, to) > 0 {
		return
	}
	leaf := tree.findLeaf(from)
	i, _ := slices.BinarySearchFunc(leaf.keys, from, tree.cmp)
	for leaf != nil {
		for ; i < len(leaf.keys); i++ {
			if tree.cmp(leaf.keys[i], to) > 0 {
				return
			}
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		leaf, i = leaf.next, 0
	}
}

// insertKeyValueInLeaf places key in sorted position, replacing the value of
// an existing key. It reports whether the key is new.
func (tree *BPlusTree[K, V]) insertKeyValueInLeaf(leaf *node[K, V], key K, value V) bool {
	idx, found := slices.BinarySearchFunc(leaf.keys, key, tree.cmp)
	if found {
		leaf.values[idx] = value
		return false
	}
	leaf.keys = slices.Insert(leaf.keys, idx, key)
	leaf.values = slices.Insert(leaf.values, idx, value)
	return true
}

// splitLeaf handles splitting a leaf node that has overflowed.
func (tree *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	newLeaf := &node[K, V]{
		isLeaf: true,
		keys:   append(make([]K, 0, tree.order+1), leaf.keys[mid:]...),
		values: append(make([]V, 0, tree.order+1), leaf.values[mid:]...),
		next:   leaf.next,
		parent: leaf.parent,
	}

	// Adjust the original leaf
	clear(leaf.keys[mid:])
	clear(leaf.values[mid:])
	leaf.keys = leaf.keys[:mid]
	leaf.values = leaf.values[:mid]
	leaf.next = newLeaf

	// If the leaf is the root (no parent), create a new root
	if leaf.parent == nil {
		tree.growRoot(leaf, newLeaf.keys[0], newLeaf)
		return
	}

	tree.insertKeyInParent(leaf.parent, newLeaf.keys[0], newLeaf)
}

func (tree *BPlusTree[K, V]) growRoot(left *node[K, V], key K, right *node[K, V]) {
	newRoot := &node[K, V]{
		keys:     []K{key},
		children: []*node[K, V]{left, right},
	}
	left.parent = newRoot
	right.parent = newRoot
	tree.root = newRoot
	tree.height++
}

// insertKeyInParent inserts key and links rightChild after the child the key
// was split from.
func (tree *BPlusTree[K, V]) insertKeyInParent(parent *node[K, V], key K, rightChild *node[K, V]) {
	idx := tree.findChildIndex(parent.keys, key)
	parent.keys = slices.Insert(parent.keys, idx, key)
	parent.children = slices.Insert(parent.children, idx+1, rightChild)
	rightChild.parent = parent

	if len(parent.keys) > tree.order {
		tree.splitInternalNode(parent)
	}
}

// splitInternalNode handles splitting an internal node that has overflowed.
// The middle key moves up to the parent.
func (tree *BPlusTree[K, V]) splitInternalNode(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	splitKey := internal.keys[mid]

	newInternal := &node[K, V]{
		keys:     append([]K{}, internal.keys[mid+1:]...),
		children: append([]*node[K, V]{}, internal.children[mid+1:]...),
		parent:   internal.parent,
	}
	for _, child := range newInternal.children {
		child.parent = newInternal
	}

	internal.keys = internal.keys[:mid:mid]
	internal.children = internal.children[: mid+1 : mid+1]

	if internal.parent == nil {
		tree.growRoot(internal, splitKey, newInternal)
		return
	}
	tree.insertKeyInParent(internal.parent, splitKey, newInternal)
}
