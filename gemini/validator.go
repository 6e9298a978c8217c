// Package gemini implements semantic container validation using Google
// Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fwojciec/harvest"
)

const model = "gemini-2.5-flash"

// Ensure Validator implements harvest.Validator at compile time.
var _ harvest.Validator = (*Validator)(nil)

// Validator implements harvest.Validator using Google Gemini. It sends
// candidate summaries, never full page content, and expects a JSON
// verdict per candidate.
type Validator struct {
	client *genai.Client
}

// NewValidator creates a new Validator.
func NewValidator(client *genai.Client) *Validator {
	return &Validator{client: client}
}

// Validate asks the model which candidates are genuine listing
// containers for the given subject.
func (v *Validator) Validate(ctx context.Context, candidates []harvest.CandidateSummary, subject string) ([]harvest.Verdict, error) {
	if len(candidates) == 0 {
		return nil, harvest.Errorf(harvest.EINVALID, "no candidates to validate")
	}
	if subject == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "subject required")
	}

	prompt := BuildUserPrompt(candidates, subject)
	config := BuildConfig()

	result, err := v.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, harvest.Errorf(harvest.EINTERNAL, "gemini returned nil result")
	}

	return ParseVerdicts(result.Text())
}

// BuildConfig returns the GenerateContentConfig for validation calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You judge whether DOM container candidates hold the records a user is looking for. " +
					"Candidates are described by structural signature, repetition count, and sample texts. " +
					"Reject navigation menus, footers, tag clouds, and other page chrome. " +
					"Respond with a JSON array, one object per candidate: " +
					`{"candidate": <index>, "accepted": <bool>, "confidence": <0..1>, "reason": "<short>"}.`,
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildUserPrompt renders the candidate summaries and the subject.
func BuildUserPrompt(candidates []harvest.CandidateSummary, subject string) string {
	var sb strings.Builder
	sb.WriteString("<candidates>\n")
	for _, c := range candidates {
		sb.WriteString("<candidate>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", c.Index)
		fmt.Fprintf(&sb, "<signature>%s</signature>\n", c.Signature)
		fmt.Fprintf(&sb, "<repetitions>%d</repetitions>\n", c.SupportCount)
		fmt.Fprintf(&sb, "<score>%.3f</score>\n", c.StructuralScore)
		for _, sample := range c.SampleTexts {
			fmt.Fprintf(&sb, "<sample>%s</sample>\n", sample)
		}
		sb.WriteString("</candidate>\n")
	}
	sb.WriteString("</candidates>\n\n")
	fmt.Fprintf(&sb, "The user is looking for: %s", subject)
	return sb.String()
}

type verdictJSON struct {
	Candidate  int     `json:"candidate"`
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ParseVerdicts decodes the model's JSON response. Markdown code fences
// are tolerated since models add them despite the JSON response type.
func ParseVerdicts(text string) ([]harvest.Verdict, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw []verdictJSON
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, harvest.Errorf(harvest.EINTERNAL, "invalid verdict response: %v", err)
	}

	verdicts := make([]harvest.Verdict, 0, len(raw))
	for _, r := range raw {
		verdicts = append(verdicts, harvest.Verdict{
			Candidate:  r.Candidate,
			Accepted:   r.Accepted,
			Confidence: r.Confidence,
			Reason:     r.Reason,
		})
	}
	return verdicts, nil
}
