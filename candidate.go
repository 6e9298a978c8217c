package harvest

import (
	"fmt"
	"strings"
)

// CandidateContainer is a cluster of sibling nodes sharing one structural
// signature, hypothesized to each represent one record instance.
type CandidateContainer struct {
	// ParentID is the common parent of all members.
	ParentID int `json:"parentId"`

	// Depth is the depth of the member nodes.
	Depth int `json:"depth"`

	// Signature is the members' structural signature. Diagnostic only.
	Signature string `json:"signature"`

	// Members lists the member node ids in document order.
	Members []int `json:"members"`

	// StructuralScore is the generator's confidence in [0, 1].
	StructuralScore float64 `json:"structuralScore"`

	// SupportCount is the number of members; always >= 2.
	SupportCount int `json:"supportCount"`
}

// CandidateSummary carries enough descriptive text about a candidate for a
// semantic judgment without exposing the raw DOM.
type CandidateSummary struct {
	// Index identifies the candidate within the generated list.
	Index int `json:"index"`

	Signature       string  `json:"signature"`
	SupportCount    int     `json:"supportCount"`
	StructuralScore float64 `json:"structuralScore"`

	// SampleTexts holds the first few members' visible text, truncated.
	SampleTexts []string `json:"sampleTexts"`
}

// Summary sample sizing.
const (
	summarySamples    = 3
	summaryTextLength = 160
)

// SummarizeCandidates builds validator-facing summaries for a candidate
// list. Sample texts come from the members' subtree text.
func SummarizeCandidates(snap *Snapshot, candidates []CandidateContainer) []CandidateSummary {
	summaries := make([]CandidateSummary, 0, len(candidates))
	for i, c := range candidates {
		s := CandidateSummary{
			Index:           i,
			Signature:       c.Signature,
			SupportCount:    c.SupportCount,
			StructuralScore: c.StructuralScore,
		}
		for _, id := range c.Members {
			if len(s.SampleTexts) >= summarySamples {
				break
			}
			n := snap.Node(id)
			if n == nil {
				continue
			}
			text := strings.TrimSpace(n.Text)
			if text == "" {
				continue
			}
			if len(text) > summaryTextLength {
				text = text[:summaryTextLength]
			}
			s.SampleTexts = append(s.SampleTexts, text)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// Describe returns a short human-readable description of the candidate.
func (c CandidateContainer) Describe() string {
	return fmt.Sprintf("%s x%d @ depth %d (score %.2f)", c.Signature, c.SupportCount, c.Depth, c.StructuralScore)
}
