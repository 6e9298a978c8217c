// Package goquery builds DOM snapshots from raw HTML.
package goquery

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fwojciec/harvest"
)

// Text captured per node is truncated so pathological pages cannot blow
// up the snapshot.
const (
	maxOwnTextLen = 320
	maxTextLen    = 1200
)

// skippedTags are subtrees that carry no listing content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"head":     true,
}

// keptAttrs are the attribute names copied onto snapshot nodes. Any
// data-* attribute is kept as well.
var keptAttrs = map[string]bool{
	"href":  true,
	"src":   true,
	"id":    true,
	"style": true,
	"alt":   true,
}

var _ harvest.SnapshotBuilder = (*Builder)(nil)

// Builder implements harvest.SnapshotBuilder on top of goquery's HTML
// parser. It flattens the element tree into indexed nodes with the
// structural facts candidate generation needs.
type Builder struct{}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build parses HTML and returns a validated snapshot.
func (b *Builder) Build(rawHTML string) (*harvest.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to parse HTML: %v", err)
	}

	root := findRoot(doc)
	if root == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "document has no root element")
	}

	snap := &harvest.Snapshot{}
	build(snap, root, harvest.NoParent, 0)

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func findRoot(doc *goquery.Document) *html.Node {
	for _, n := range doc.Selection.Nodes {
		if found := firstElement(n); found != nil {
			return found
		}
	}
	return nil
}

func firstElement(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c); found != nil {
			return found
		}
	}
	return nil
}

// build appends the element and its kept descendants depth-first, so ids
// follow document order.
func build(snap *harvest.Snapshot, n *html.Node, parent, depth int) int {
	id := len(snap.Nodes)
	snap.Nodes = append(snap.Nodes, harvest.DomNode{
		ID:      id,
		Tag:     n.Data,
		Classes: classList(n),
		Attrs:   attrMap(n),
		OwnText: truncate(ownText(n), maxOwnTextLen),
		Text:    truncate(subtreeText(n), maxTextLen),
		Depth:   depth,
		Parent:  parent,
	})

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skippedTags[c.Data] {
			continue
		}
		child := build(snap, c, id, depth+1)
		snap.Nodes[id].Children = append(snap.Nodes[id].Children, child)
	}
	return id
}

func classList(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			classes := strings.Fields(a.Val)
			sort.Strings(classes)
			return classes
		}
	}
	return nil
}

func attrMap(n *html.Node) map[string]string {
	var attrs map[string]string
	for _, a := range n.Attr {
		if !keptAttrs[a.Key] && !strings.HasPrefix(a.Key, "data-") {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[a.Key] = a.Val
	}
	return attrs
}

// ownText joins the element's direct text children.
func ownText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
		}
	}
	return collapseSpace(strings.Join(parts, " "))
}

// subtreeText joins every text node under the element, excluding skipped
// subtrees.
func subtreeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		case html.ElementNode:
			if skippedTags[c.Data] {
				return
			}
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return collapseSpace(sb.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
