package harvest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// priceRe matches currency-marked amounts in text: a currency symbol or
// code adjacent to a number, in either order. It is deliberately cheap; the
// locale-aware parse happens later in field extraction.
var priceRe = regexp.MustCompile(`(?i)([$€£¥]\s*\d)|(\d[\d\s.,]*\s*(zł|pln|usd|eur|gbp|czk|chf|kr|[$€£¥]))`)

// looksLikePrice reports whether text contains a currency-marked number.
func looksLikePrice(text string) bool {
	return priceRe.MatchString(text)
}

// nodeFlags holds the cheap content-presence flags that participate in a
// node's structural signature.
type nodeFlags struct {
	hasLink  bool
	hasImage bool
	hasPrice bool
}

// subtreeFlags computes presence flags for every node in a single
// bottom-up pass. Link and image presence cover the whole subtree; price
// presence covers only the node's own text and its direct children's own
// text, so a deep unrelated price cannot taint a wrapper's signature.
func subtreeFlags(snap *Snapshot) []nodeFlags {
	flags := make([]nodeFlags, len(snap.Nodes))

	order := make([]int, len(snap.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return snap.Nodes[order[i]].Depth > snap.Nodes[order[j]].Depth
	})

	for _, id := range order {
		n := &snap.Nodes[id]
		f := nodeFlags{
			hasLink:  n.Tag == "a",
			hasImage: n.Tag == "img",
		}
		for _, c := range n.Children {
			cf := flags[c]
			f.hasLink = f.hasLink || cf.hasLink
			f.hasImage = f.hasImage || cf.hasImage
		}
		f.hasPrice = looksLikePrice(nearText(snap, n))
		flags[id] = f
	}
	return flags
}

// nearText returns a node's own text plus its direct children's own text.
func nearText(snap *Snapshot, n *DomNode) string {
	if len(n.Children) == 0 {
		return n.OwnText
	}
	var sb strings.Builder
	sb.WriteString(n.OwnText)
	for _, c := range n.Children {
		child := snap.Node(c)
		if child == nil || child.OwnText == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(child.OwnText)
	}
	return sb.String()
}

// signatureKey builds the human-readable structural signature of a node:
// tag, sorted class tokens, and presence flags. Nodes with equal keys are
// clustered together by the generator.
func signatureKey(n *DomNode, f nodeFlags) string {
	classes := make([]string, len(n.Classes))
	copy(classes, n.Classes)
	sort.Strings(classes)

	var sb strings.Builder
	sb.WriteString(n.Tag)
	sb.WriteByte('|')
	sb.WriteString(strings.Join(classes, "."))
	sb.WriteByte('|')
	if f.hasLink {
		sb.WriteByte('a')
	}
	if f.hasImage {
		sb.WriteByte('i')
	}
	if f.hasPrice {
		sb.WriteByte('p')
	}
	return sb.String()
}

// signatureHash returns a compact hash of a signature key, used for fast
// cluster grouping and for remembered container descriptors.
func signatureHash(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
