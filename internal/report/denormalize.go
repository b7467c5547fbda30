package report

import (
	"strings"
	"time"
)

// Denormalize renders a canonical report back into the current document shape.
// Unknown and empty values are omitted so that Normalize(Denormalize(c)) equals c.
func Denormalize(c *Canonical) map[string]any {
	root := map[string]any{}
	analysis := map[string]any{}

	putText(root, nameID, c.ID)
	putText(root, nameAgentName, c.Participants.AgentName)
	putText(root, nameCounterpartyName, c.Participants.CounterpartyName)
	putText(root, nameAgentPhone, c.Participants.AgentPhone)
	if c.HasTimestamp() {
		root[nameTimestamp] = map[string]any{"$date": c.Timestamp.UTC().Format(time.RFC3339Nano)}
	}
	putText(root, nameTranscript, c.Transcript)

	putText(analysis, nameSummary, c.Summary)
	putText(analysis, namePurpose, c.Purpose)
	putSentiment(analysis, nameSentimentOverall, c.Sentiment.Overall)

	speakers := map[string]any{}
	putSentiment(speakers, nameAgentSentiment, c.Sentiment.Agent)
	putSentiment(speakers, nameCounterpartySentiment, c.Sentiment.Counterparty)
	if len(speakers) > 0 {
		analysis[nameSpeakerSentiment] = speakers
	}

	putTriState(analysis, namePaymentDiscussed, c.PaymentDiscussed)
	if c.PaymentAmount != nil {
		analysis[namePaymentAmount] = *c.PaymentAmount
	}
	putTriState(analysis, nameFollowUpRequired, c.FollowUp.Required)
	putText(analysis, nameFollowUpDetails, c.FollowUp.Details)
	putText(analysis, nameAgentPerformance, c.AgentPerformance)

	if len(c.ScoreBreakdown) > 0 {
		scores := make(map[string]any, len(c.ScoreBreakdown))
		for _, s := range c.ScoreBreakdown {
			scores[s.Criterion] = s.Value
		}
		analysis[nameScoreBreakdown] = scores
	}
	if c.TotalScore != nil {
		analysis[nameTotalScore] = *c.TotalScore
	}

	putLines(analysis, nameImprovements, c.Improvements)
	putLines(analysis, namePositives, c.Positives)
	putLines(analysis, nameUnresolved, c.UnresolvedIssues)
	if len(c.MarkedTranscript) > 0 {
		analysis[nameMarkedTranscript] = strings.Join(c.MarkedTranscript, "\n")
	}

	if len(analysis) > 0 {
		root[nameAnalysis] = analysis
	}
	return root
}

func putText(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putSentiment(m map[string]any, key string, s Sentiment) {
	if s != "" && s != SentimentUnknown {
		m[key] = string(s)
	}
}

func putTriState(m map[string]any, key string, t TriState) {
	switch t {
	case Yes:
		m[key] = true
	case No:
		m[key] = false
	}
}

func putLines(m map[string]any, key string, lines []string) {
	if len(lines) == 0 {
		return
	}
	items := make([]any, len(lines))
	for i, line := range lines {
		items[i] = line
	}
	m[key] = items
}
