package harvest_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tnode is a compact tree literal for building test snapshots.
type tnode struct {
	tag      string
	classes  []string
	attrs    map[string]string
	text     string // own text
	children []tnode
}

// buildSnapshot flattens a tree literal into a Snapshot, assigning ids in
// depth-first document order and deriving subtree text.
func buildSnapshot(t *testing.T, root tnode) *harvest.Snapshot {
	t.Helper()

	snap := &harvest.Snapshot{}
	var add func(n tnode, parent, depth int) int
	add = func(n tnode, parent, depth int) int {
		id := len(snap.Nodes)
		snap.Nodes = append(snap.Nodes, harvest.DomNode{
			ID:      id,
			Tag:     n.tag,
			Classes: n.classes,
			Attrs:   n.attrs,
			OwnText: n.text,
			Depth:   depth,
			Parent:  parent,
		})
		for _, c := range n.children {
			childID := add(c, id, depth+1)
			snap.Nodes[id].Children = append(snap.Nodes[id].Children, childID)
		}
		return id
	}
	snap.Root = add(root, harvest.NoParent, 0)

	// Derive own+descendant text bottom-up.
	var textOf func(id int) string
	textOf = func(id int) string {
		n := snap.Node(id)
		parts := []string{n.OwnText}
		for _, c := range n.Children {
			parts = append(parts, textOf(c))
		}
		text := strings.Join(parts, " ")
		snap.Nodes[id].Text = strings.Join(strings.Fields(text), " ")
		return text
	}
	textOf(snap.Root)

	require.NoError(t, snap.Validate())
	return snap
}

func TestSnapshotValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a consistent tree", func(t *testing.T) {
		t.Parallel()

		snap := buildSnapshot(t, tnode{tag: "html", children: []tnode{
			{tag: "body", children: []tnode{{tag: "div"}}},
		}})

		assert.NoError(t, snap.Validate())
	})

	t.Run("rejects empty snapshot", func(t *testing.T) {
		t.Parallel()

		snap := &harvest.Snapshot{}

		err := snap.Validate()

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects dangling parent id", func(t *testing.T) {
		t.Parallel()

		snap := &harvest.Snapshot{
			Root: 0,
			Nodes: []harvest.DomNode{
				{ID: 0, Tag: "html", Parent: harvest.NoParent},
				{ID: 1, Tag: "div", Parent: 42, Depth: 1},
			},
		}

		err := snap.Validate()

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Contains(t, harvest.ErrorMessage(err), "dangling parent")
	})

	t.Run("rejects depth inconsistent with parent chain", func(t *testing.T) {
		t.Parallel()

		snap := &harvest.Snapshot{
			Root: 0,
			Nodes: []harvest.DomNode{
				{ID: 0, Tag: "html", Parent: harvest.NoParent, Children: []int{1}},
				{ID: 1, Tag: "div", Parent: 0, Depth: 5},
			},
		}

		err := snap.Validate()

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects child whose parent pointer disagrees", func(t *testing.T) {
		t.Parallel()

		snap := &harvest.Snapshot{
			Root: 0,
			Nodes: []harvest.DomNode{
				{ID: 0, Tag: "html", Parent: harvest.NoParent, Children: []int{1, 2}},
				{ID: 1, Tag: "div", Parent: 0, Depth: 1, Children: []int{2}},
				{ID: 2, Tag: "span", Parent: 0, Depth: 1},
			},
		}

		err := snap.Validate()

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
