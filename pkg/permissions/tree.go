package permissions

import "strings"

// Tree is a parsed granted-permission set, keyed by dot-separated segments.
// It is built fresh per evaluation and never mutated afterwards, so a Tree
// is safe for concurrent reads.
type Tree struct {
	allowAll bool
	root     *node
}

// node is one level of the permission hierarchy. terminal marks that the
// path ending here is granted exactly; children hold deeper segments.
type node struct {
	terminal bool
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Parse builds a Tree from a flat list of granted permission strings.
// Duplicates are ignored and order is irrelevant. The literal grant "*"
// sets a global-allow flag instead of entering the hierarchy. Malformed
// strings (empty, only dots) become segments that cannot match any real
// lookup; they are kept rather than rejected.
func Parse(grants []string) *Tree {
	t := &Tree{root: newNode()}

	for _, grant := range grants {
		if grant == Wildcard {
			t.allowAll = true
			continue
		}

		cur := t.root
		for _, segment := range strings.Split(grant, Separator) {
			next, ok := cur.children[segment]
			if !ok {
				next = newNode()
				cur.children[segment] = next
			}
			cur = next
		}
		cur.terminal = true
	}

	return t
}

// AllowAll reports whether the grant set contained the global wildcard.
func (t *Tree) AllowAll() bool {
	return t.allowAll
}

// Has reports whether the exact dot-separated path is granted. The global
// wildcard satisfies every lookup. Otherwise the path must descend to a
// terminal marker that accounts for the full path: a grant of "a.b.c"
// satisfies neither "a.b" nor "a.b.c.d".
func (t *Tree) Has(path string) bool {
	if t.allowAll {
		return true
	}

	cur := t.root
	for _, segment := range strings.Split(path, Separator) {
		next, ok := cur.children[segment]
		if !ok {
			return false
		}
		cur = next
	}
	return cur.terminal
}
