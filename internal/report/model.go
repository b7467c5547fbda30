// Package report turns the analysis backend's report documents, whatever their
// historical shape, into one canonical model.
package report

import "time"

// Raw is a backend report document as decoded from JSON
type Raw = any

// Sentiment is the normalized sentiment of a call or a speaker
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUnknown  Sentiment = "unknown"
)

// TriState is a yes/no answer that may be missing or ambiguous in the source
type TriState string

const (
	Yes     TriState = "yes"
	No      TriState = "no"
	Unknown TriState = "unknown"
)

// Score range bounds. Scores outside are clamped.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Participants of a call
type Participants struct {
	AgentName        string `json:"agent_name"`
	CounterpartyName string `json:"counterparty_name"`
	AgentPhone       string `json:"agent_phone"`
}

// Sentiments holds the overall and per-speaker sentiment
type Sentiments struct {
	Overall      Sentiment `json:"overall"`
	Agent        Sentiment `json:"agent"`
	Counterparty Sentiment `json:"counterparty"`
}

// FollowUp describes whether the call needs a follow-up
type FollowUp struct {
	Required TriState `json:"required"`
	Details  string   `json:"details"`
}

// Score is one criterion of the score breakdown
type Score struct {
	Criterion string  `json:"criterion"`
	Value     float64 `json:"value"`
}

// Canonical is the normalized report. Every field is populated: absent source
// fields carry their documented default, never a partial value.
type Canonical struct {
	ID               string       `json:"id"`
	Participants     Participants `json:"participants"`
	Timestamp        time.Time    `json:"timestamp"`
	Summary          string       `json:"summary"`
	Purpose          string       `json:"purpose"`
	Sentiment        Sentiments   `json:"sentiment"`
	PaymentDiscussed TriState     `json:"payment_discussed"`
	PaymentAmount    *string      `json:"payment_amount,omitempty"`
	FollowUp         FollowUp     `json:"follow_up"`
	AgentPerformance string       `json:"agent_performance"`
	// ScoreBreakdown is ordered by criterion name
	ScoreBreakdown   []Score  `json:"score_breakdown"`
	TotalScore       *float64 `json:"total_score,omitempty"`
	Improvements     []string `json:"improvements"`
	Positives        []string `json:"positives"`
	UnresolvedIssues []string `json:"unresolved_issues"`
	Transcript       string   `json:"transcript"`
	MarkedTranscript []string `json:"marked_transcript"`
}

// HasTimestamp reports whether the source document carried a usable date
func (c *Canonical) HasTimestamp() bool {
	return !c.Timestamp.IsZero()
}
