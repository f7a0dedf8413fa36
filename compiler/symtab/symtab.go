// Package symtab implements the translator's symbol tables: height-balanced
// binary search trees from string keys to symbols.
//
// Two independent instances exist during a translation: the global table
// holds callables keyed by name and arity, the local table holds the
// variables of the function currently being translated.
package symtab

import "strconv"

type (
	Table struct {
		root *node
	}

	node struct {
		key string
		sym Symbol

		height int

		left, right *node
	}

	// Symbol is either a Variable or a Callable.
	Symbol interface{}

	Variable struct {
		Type Type
	}

	Callable struct {
		Kind   CallKind
		Arity  int
		Params []string
	}

	Type     int
	CallKind int
)

const (
	TypeNull Type = iota
	TypeNum
	TypeString
	TypeBool
	TypeUndef
)

const (
	Func CallKind = iota
	Getter
	Setter
)

// Key composes the global-table key for a callable. Arity is part of
// identity: same name at different arities are distinct symbols.
func Key(name string, arity int) string {
	return name + "_" + strconv.Itoa(arity)
}

func New() *Table {
	return &Table{}
}

// Insert adds sym under key, or replaces the symbol in place when the key
// already exists. The tree is rebalanced on the way back to the root.
func (t *Table) Insert(key string, sym Symbol) {
	if t == nil {
		return
	}

	t.root = insert(t.root, key, sym)
}

func (t *Table) Find(key string) (Symbol, bool) {
	if t == nil {
		return nil, false
	}

	n := t.root

	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n.sym, true
		}
	}

	return nil, false
}

// Delete removes key from the table. It reports whether the key was present.
func (t *Table) Delete(key string) bool {
	if t == nil {
		return false
	}

	root, found := del(t.root, key)
	t.root = root

	return found
}

// Dup deep-copies a symbol so the copy does not alias owned payload of the
// original. Used during predecessor-swap deletion.
func Dup(sym Symbol) Symbol {
	switch s := sym.(type) {
	case Variable:
		return s
	case Callable:
		c := s
		c.Params = append([]string(nil), s.Params...)

		return c
	}

	return sym
}

func insert(n *node, key string, sym Symbol) *node {
	if n == nil {
		return &node{key: key, sym: sym, height: 1}
	}

	switch {
	case key < n.key:
		n.left = insert(n.left, key, sym)
	case key > n.key:
		n.right = insert(n.right, key, sym)
	default:
		n.sym = sym

		return n
	}

	return rebalance(n)
}

func del(n *node, key string) (*node, bool) {
	if n == nil {
		return nil, false
	}

	var found bool

	switch {
	case key < n.key:
		n.left, found = del(n.left, key)
	case key > n.key:
		n.right, found = del(n.right, key)
	default:
		found = true

		switch {
		case n.left == nil:
			return n.right, true
		case n.right == nil:
			return n.left, true
		default:
			// replace by the in-order predecessor: the rightmost
			// node of the left subtree
			p := n.left
			for p.right != nil {
				p = p.right
			}

			n.key = p.key
			n.sym = Dup(p.sym)

			n.left, _ = del(n.left, p.key)
		}
	}

	if !found {
		return n, false
	}

	return rebalance(n), true
}

// rebalance restores the AVL invariant at n, handling the four standard
// rotation cases, and returns the new subtree root.
func rebalance(n *node) *node {
	update(n)

	switch bf := balance(n); {
	case bf > 1 && balance(n.left) >= 0: // left-left
		return rotateRight(n)
	case bf > 1: // left-right
		n.left = rotateLeft(n.left)

		return rotateRight(n)
	case bf < -1 && balance(n.right) <= 0: // right-right
		return rotateLeft(n)
	case bf < -1: // right-left
		n.right = rotateRight(n.right)

		return rotateLeft(n)
	}

	return n
}

func rotateRight(n *node) *node {
	l := n.left

	n.left = l.right
	l.right = n

	update(n)
	update(l)

	return l
}

func rotateLeft(n *node) *node {
	r := n.right

	n.right = r.left
	r.left = n

	update(n)
	update(r)

	return r
}

func update(n *node) {
	n.height = 1 + max(height(n.left), height(n.right))
}

func balance(n *node) int {
	return height(n.left) - height(n.right)
}

func height(n *node) int {
	if n == nil {
		return 0
	}

	return n.height
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
