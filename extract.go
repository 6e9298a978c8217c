package harvest

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Strategy confidences, highest for the most specific fallback.
const (
	confidencePrimary    = 1.0
	confidenceHinted     = 0.8
	confidenceAnchor     = 0.6
	confidenceLastResort = 0.4
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var (
	backgroundImageRe = regexp.MustCompile(`background(?:-image)?\s*:\s*url\(['"]?([^'")]+)['"]?\)`)
	urlShapedRe       = regexp.MustCompile(`^(https?://|/)\S+$`)
)

// Extraction is the result of mapping a container's members to records.
type Extraction struct {
	Records []Record `json:"records"`

	// Dropped counts member nodes that produced no identifying field.
	// Drops are diagnostics, never errors.
	Dropped int `json:"dropped"`
}

// ExtractRecords maps each member node of the chosen container to a
// Record via ordered fallback strategies per field. A record is emitted
// only if it has at least one identifying field (name or url).
func ExtractRecords(snap *Snapshot, container CandidateContainer, hints *HintSet) Extraction {
	if hints == nil {
		hints = DefaultHints()
	}

	var out Extraction
	for _, id := range container.Members {
		member := snap.Node(id)
		if member == nil {
			continue
		}
		record := extractRecord(snap, member, hints)
		if !record.Identified() {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, record)
	}
	return out
}

func extractRecord(snap *Snapshot, member *DomNode, hints *HintSet) Record {
	r := Record{SourceID: member.ID}
	nodes := subtreeNodes(snap, member)

	priceRaw := extractPrice(&r, member, nodes, hints)
	extractName(&r, member, nodes, hints, priceRaw)
	extractURL(&r, member, nodes, hints)
	extractImage(&r, nodes, hints)
	extractDescription(&r, member, nodes, hints)
	extractQuantities(&r, member)

	return r
}

// subtreeNodes returns the member and its descendants in document order.
func subtreeNodes(snap *Snapshot, member *DomNode) []*DomNode {
	var nodes []*DomNode
	var walk func(id int)
	walk = func(id int) {
		n := snap.Node(id)
		if n == nil {
			return
		}
		nodes = append(nodes, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(member.ID)
	return nodes
}

// extractPrice: currency-marked number in the member's own text, then the
// nearest price-hinted descendant. Returns the matched price substring so
// name extraction can strip it.
func extractPrice(r *Record, member *DomNode, nodes []*DomNode, hints *HintSet) string {
	if value, code, raw, ok := parsePrice(member.OwnText); ok {
		r.set(FieldPrice, cleanText(raw), confidencePrimary)
		r.setNumeric(FieldPrice, value)
		r.Currency = code
		return raw
	}
	for _, n := range nodes {
		if n.ID == member.ID {
			continue
		}
		field, hinted := hints.ClassField(n)
		if !hinted || field != FieldPrice {
			continue
		}
		if value, code, raw, ok := parsePrice(n.Text); ok {
			r.set(FieldPrice, cleanText(raw), confidenceHinted)
			r.setNumeric(FieldPrice, value)
			r.Currency = code
			return raw
		}
	}
	// The signature-level price flag looked at near text; honor it here
	// too so "29,99 zł" in an unhinted descendant still resolves.
	for _, n := range nodes {
		if n.ID == member.ID {
			continue
		}
		if value, code, raw, ok := parsePrice(n.OwnText); ok {
			r.set(FieldPrice, cleanText(raw), confidenceAnchor)
			r.setNumeric(FieldPrice, value)
			r.Currency = code
			return raw
		}
	}
	return ""
}

// extractName: heading tag, then name-hinted descendant, then anchor
// text, then the member's cleaned text with the price substring stripped.
func extractName(r *Record, member *DomNode, nodes []*DomNode, hints *HintSet, priceRaw string) {
	for _, n := range nodes {
		if headingTags[n.Tag] && strings.TrimSpace(n.Text) != "" {
			r.set(FieldName, cleanText(n.Text), confidencePrimary)
			return
		}
	}
	for _, n := range nodes {
		if n.ID == member.ID {
			continue
		}
		if field, ok := hints.ClassField(n); ok && field == FieldName && strings.TrimSpace(n.Text) != "" {
			r.set(FieldName, cleanText(n.Text), confidenceHinted)
			return
		}
	}
	for _, n := range nodes {
		if n.Tag == "a" && strings.TrimSpace(n.Text) != "" {
			r.set(FieldName, cleanText(n.Text), confidenceAnchor)
			return
		}
	}
	text := member.Text
	if priceRaw != "" {
		text = strings.ReplaceAll(text, priceRaw, " ")
	}
	if text = cleanText(text); hasWordContent(text) {
		r.set(FieldName, text, confidenceLastResort)
	}
}

// hasWordContent reports whether s contains at least one letter or digit,
// filtering out decoration-only cells like "—".
func hasWordContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// extractURL: the member's own anchor href, then the first descendant
// anchor href, then a URL-shaped data attribute.
func extractURL(r *Record, member *DomNode, nodes []*DomNode, hints *HintSet) {
	if member.Tag == "a" {
		if href, ok := member.Attrs["href"]; ok && href != "" {
			r.set(FieldURL, href, confidencePrimary)
			return
		}
	}
	for _, n := range nodes {
		if n.Tag != "a" {
			continue
		}
		if href, ok := n.Attrs["href"]; ok && href != "" {
			r.set(FieldURL, href, confidenceHinted)
			return
		}
	}
	for _, n := range nodes {
		for _, attr := range sortedAttrs(n) {
			field, ok := hints.AttrField(attr)
			if !ok || field != FieldURL {
				continue
			}
			if value := n.Attrs[attr]; urlShapedRe.MatchString(value) {
				r.set(FieldURL, value, confidenceLastResort)
				return
			}
		}
	}
}

func sortedAttrs(n *DomNode) []string {
	attrs := make([]string, 0, len(n.Attrs))
	for attr := range n.Attrs {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}

// extractImage: img src or data-src, then a CSS background-image token.
func extractImage(r *Record, nodes []*DomNode, hints *HintSet) {
	for _, n := range nodes {
		if n.Tag != "img" {
			continue
		}
		if src, ok := n.Attrs["src"]; ok && src != "" {
			r.set(FieldImage, src, confidencePrimary)
			return
		}
		if src, ok := n.Attrs["data-src"]; ok && src != "" {
			r.set(FieldImage, src, confidenceHinted)
			return
		}
	}
	for _, n := range nodes {
		style, ok := n.Attrs["style"]
		if !ok {
			continue
		}
		if m := backgroundImageRe.FindStringSubmatch(style); m != nil {
			r.set(FieldImage, m[1], confidenceLastResort)
			return
		}
	}
}

// extractDescription: first description-hinted descendant with text.
func extractDescription(r *Record, member *DomNode, nodes []*DomNode, hints *HintSet) {
	for _, n := range nodes {
		if n.ID == member.ID {
			continue
		}
		if field, ok := hints.ClassField(n); ok && field == FieldDescription && strings.TrimSpace(n.Text) != "" {
			r.set(FieldDescription, cleanText(n.Text), confidenceHinted)
			return
		}
	}
}

// extractQuantities pulls mass/volume mentions out of the record's text so
// numeric constraints beyond price have data to compare against.
func extractQuantities(r *Record, member *DomNode) {
	if field, value, raw, ok := parseQuantity(member.Text); ok {
		r.set(field, cleanText(raw), confidenceHinted)
		r.setNumeric(field, value)
	}
}
