package harvest

import "context"

// NoParent marks a node without a parent (the root).
const NoParent = -1

// DomNode is a single element in a captured page snapshot. Nodes are
// identified by their index in the snapshot's node list and reference each
// other only through ids, never through pointers, so a Snapshot can be
// treated as an immutable value once built.
type DomNode struct {
	ID      int               `json:"id"`
	Tag     string            `json:"tag"`
	Classes []string          `json:"classes,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`

	// OwnText is the text directly inside this node, truncated.
	OwnText string `json:"ownText,omitempty"`

	// Text is the node's own plus descendant text, truncated.
	Text string `json:"text,omitempty"`

	Depth    int   `json:"depth"`
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`
}

// Snapshot is a read-only tree representation of a captured page. It is
// supplied by an external collaborator once per call and never mutated by
// the engine.
type Snapshot struct {
	Nodes []DomNode `json:"nodes"`
	Root  int       `json:"root"`
}

// Node returns the node with the given id, or nil if the id is out of range.
func (s *Snapshot) Node(id int) *DomNode {
	if id < 0 || id >= len(s.Nodes) {
		return nil
	}
	return &s.Nodes[id]
}

// Validate checks the snapshot's structural invariants: the root exists,
// every non-root parent id resolves to an existing node, child lists are
// consistent, and depth follows the parent chain. A violation is a caller
// bug and is the only hard failure in the engine.
func (s *Snapshot) Validate() error {
	if len(s.Nodes) == 0 {
		return Errorf(EINVALID, "snapshot has no nodes")
	}
	if s.Node(s.Root) == nil {
		return Errorf(EINVALID, "snapshot root %d does not resolve to a node", s.Root)
	}
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.ID != i {
			return Errorf(EINVALID, "node at index %d carries id %d", i, n.ID)
		}
		if n.ID == s.Root {
			if n.Parent != NoParent {
				return Errorf(EINVALID, "root node %d has parent %d", n.ID, n.Parent)
			}
			continue
		}
		parent := s.Node(n.Parent)
		if parent == nil {
			return Errorf(EINVALID, "node %d has dangling parent id %d", n.ID, n.Parent)
		}
		if n.Depth != parent.Depth+1 {
			return Errorf(EINVALID, "node %d depth %d inconsistent with parent depth %d", n.ID, n.Depth, parent.Depth)
		}
		for _, c := range n.Children {
			child := s.Node(c)
			if child == nil {
				return Errorf(EINVALID, "node %d has dangling child id %d", n.ID, c)
			}
			if child.Parent != n.ID {
				return Errorf(EINVALID, "node %d lists child %d whose parent is %d", n.ID, c, child.Parent)
			}
		}
	}
	return nil
}

// SnapshotBuilder turns raw HTML into a Snapshot. Implementations hide the
// HTML parser; the engine itself never touches markup.
type SnapshotBuilder interface {
	Build(html string) (*Snapshot, error)
}

// Fetcher retrieves raw HTML from URLs. Implementations do not execute
// JavaScript; pages requiring rendering must be captured by the
// browser-driving collaborator instead.
type Fetcher interface {
	// Fetch retrieves the HTML content from the given URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any underlying resources.
	Close() error
}
