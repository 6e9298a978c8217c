package harvest

import (
	"sort"
	"strings"
)

// Generator tuning. The cap bounds downstream validation cost.
const (
	DefaultMaxCandidates = 8

	// minClusterSize is the smallest sibling cluster considered a candidate.
	minClusterSize = 2

	// minListingDepth is the shallowest depth at which a genuine record
	// grid is plausible; clusters above it are treated as page chrome.
	minListingDepth = 2

	// chromePenalty multiplies the score of clusters under nav-like
	// ancestors or above minListingDepth.
	chromePenalty = 0.05

	// containmentMargin is how much better a nested candidate's score must
	// be before it displaces its enclosing candidate.
	containmentMargin = 0.15
)

// Scoring weights. Price presence dominates because it is the strongest
// listing signal available without semantics.
const (
	weightPrice   = 0.35
	weightAnchor  = 0.25
	weightImage   = 0.15
	weightSupport = 0.25
)

// chromeTokens mark ancestors that carry navigation rather than content.
var chromeTokens = []string{
	"nav", "menu", "footer", "header", "breadcrumb",
	"sidebar", "pagination", "toolbar", "tabs", "cookie",
}

// Generate clusters sibling nodes by structural signature and returns
// scored candidate containers, best first, capped at DefaultMaxCandidates.
// It is a pure function: identical snapshots yield identical ordered
// results. An empty result means no qualifying structure was found, which
// callers must distinguish from semantic rejection.
func Generate(snap *Snapshot) []CandidateContainer {
	flags := subtreeFlags(snap)

	var candidates []CandidateContainer
	for id := range snap.Nodes {
		parent := &snap.Nodes[id]
		if len(parent.Children) < minClusterSize {
			continue
		}
		for _, cluster := range clusterChildren(snap, parent, flags) {
			if len(cluster.members) < minClusterSize {
				continue
			}
			candidates = append(candidates, scoreCluster(snap, parent, cluster, flags))
		}
	}

	candidates = dedupeContained(snap, candidates)
	sortCandidates(candidates)

	if len(candidates) > DefaultMaxCandidates {
		candidates = candidates[:DefaultMaxCandidates]
	}
	return candidates
}

// sortCandidates orders candidates by descending score, then support,
// then parent id for a deterministic total order.
func sortCandidates(candidates []CandidateContainer) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].StructuralScore != candidates[j].StructuralScore {
			return candidates[i].StructuralScore > candidates[j].StructuralScore
		}
		if candidates[i].SupportCount != candidates[j].SupportCount {
			return candidates[i].SupportCount > candidates[j].SupportCount
		}
		return candidates[i].ParentID < candidates[j].ParentID
	})
}

// cluster groups children of one parent that share a signature.
type cluster struct {
	key     string
	members []int
}

// clusterChildren partitions a parent's children by structural signature,
// preserving document order of both clusters and members.
func clusterChildren(snap *Snapshot, parent *DomNode, flags []nodeFlags) []cluster {
	var clusters []cluster
	index := make(map[string]int)

	for _, c := range parent.Children {
		child := snap.Node(c)
		if child == nil {
			continue
		}
		key := signatureKey(child, flags[c])
		if i, ok := index[key]; ok {
			clusters[i].members = append(clusters[i].members, c)
			continue
		}
		index[key] = len(clusters)
		clusters = append(clusters, cluster{key: key, members: []int{c}})
	}
	return clusters
}

// scoreCluster turns a sibling cluster into a scored candidate.
func scoreCluster(snap *Snapshot, parent *DomNode, cl cluster, flags []nodeFlags) CandidateContainer {
	var priced, linked, imaged int
	for _, id := range cl.members {
		f := flags[id]
		if f.hasPrice {
			priced++
		}
		if f.hasLink {
			linked++
		}
		if f.hasImage {
			imaged++
		}
	}

	n := float64(len(cl.members))
	score := weightPrice*(float64(priced)/n) +
		weightAnchor*(float64(linked)/n) +
		weightImage*(float64(imaged)/n) +
		weightSupport*(1-1/n)

	depth := parent.Depth + 1
	if depth < minListingDepth || underChromeAncestor(snap, parent) {
		score *= chromePenalty
	}
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	return CandidateContainer{
		ParentID:        parent.ID,
		Depth:           depth,
		Signature:       cl.key,
		Members:         cl.members,
		StructuralScore: score,
		SupportCount:    len(cl.members),
	}
}

// underChromeAncestor walks the parent chain looking for nav-like markers
// in tags, class tokens, or ids.
func underChromeAncestor(snap *Snapshot, n *DomNode) bool {
	for cur := n; cur != nil; cur = snap.Node(cur.Parent) {
		if isChromeNode(cur) {
			return true
		}
		if cur.Parent == NoParent {
			break
		}
	}
	return false
}

func isChromeNode(n *DomNode) bool {
	for _, token := range chromeTokens {
		if n.Tag == token {
			return true
		}
		for _, class := range n.Classes {
			if strings.Contains(strings.ToLower(class), token) {
				return true
			}
		}
		if id, ok := n.Attrs["id"]; ok && strings.Contains(strings.ToLower(id), token) {
			return true
		}
	}
	return false
}

// dedupeContained removes candidates nested inside other candidates. The
// outer candidate wins unless the inner one scores materially higher;
// near-ties prefer the shallower wrapper when it carries price-like text
// itself, then the higher score, then the larger support.
func dedupeContained(snap *Snapshot, candidates []CandidateContainer) []CandidateContainer {
	if len(candidates) < 2 {
		return candidates
	}

	removed := make([]bool, len(candidates))
	for i := range candidates {
		if removed[i] {
			continue
		}
		for j := range candidates {
			if i == j || removed[i] || removed[j] {
				continue
			}
			if !containsCandidate(snap, candidates[i], candidates[j]) {
				continue
			}
			// candidates[j] is nested inside candidates[i].
			if keepOuter(snap, candidates[i], candidates[j]) {
				removed[j] = true
			} else {
				removed[i] = true
			}
		}
	}

	kept := candidates[:0]
	for i, c := range candidates {
		if !removed[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

// containsCandidate reports whether every member of inner sits inside a
// member of outer (or is one).
func containsCandidate(snap *Snapshot, outer, inner CandidateContainer) bool {
	memberSet := make(map[int]bool, len(outer.Members))
	for _, id := range outer.Members {
		memberSet[id] = true
	}
	for _, id := range inner.Members {
		found := false
		for cur := snap.Node(id); cur != nil; cur = snap.Node(cur.Parent) {
			if memberSet[cur.ID] {
				found = true
				break
			}
			if cur.Parent == NoParent {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// keepOuter decides a containment conflict in favor of the outer candidate
// unless the inner one is materially better.
func keepOuter(snap *Snapshot, outer, inner CandidateContainer) bool {
	if inner.StructuralScore > outer.StructuralScore+containmentMargin {
		return false
	}
	outerPriced := clusterHasPrice(snap, outer)
	innerPriced := clusterHasPrice(snap, inner)
	if outerPriced != innerPriced {
		return outerPriced
	}
	if outer.StructuralScore != inner.StructuralScore {
		return outer.StructuralScore > inner.StructuralScore
	}
	return outer.SupportCount >= inner.SupportCount
}

// clusterHasPrice reports whether any member carries price-like near text.
func clusterHasPrice(snap *Snapshot, c CandidateContainer) bool {
	for _, id := range c.Members {
		n := snap.Node(id)
		if n != nil && looksLikePrice(nearText(snap, n)) {
			return true
		}
	}
	return false
}
