package report

import (
	"encoding/json"
	"fmt"

	"github.com/diallo/callreview/pkg/errors"
)

// Normalize converts a backend report document into the canonical model.
// raw is a decoded JSON value or its encoded bytes. Anything that is not a JSON
// object fails with NOT_AN_OBJECT; within an object every field is optional and
// resolved from the first usable candidate key, falling back to its default.
func Normalize(raw Raw) (*Canonical, error) {
	root, err := toRoot(raw)
	if err != nil {
		return nil, err
	}

	// analysis fields prefer the nested analysis object, identity fields the root
	analysis := objects([]scope{root}, keysAnalysis)
	rootFirst := append([]scope{root}, analysis...)
	analysisFirst := append(append([]scope{}, analysis...), root)

	speakers := objects(analysisFirst, keysSpeakerSentiment)
	speakerFirst := append(append([]scope{}, speakers...), analysisFirst...)
	followUps := objects(analysisFirst, keysFollowUp)

	c := &Canonical{
		ID: pickOr(rootFirst, keysID, asID, ""),
		Participants: Participants{
			AgentName:        pickOr(rootFirst, keysAgentName, asText, ""),
			CounterpartyName: pickOr(rootFirst, keysCounterpartyName, asText, ""),
			AgentPhone:       pickOr(rootFirst, keysAgentPhone, asText, ""),
		},
		Summary:          pickOr(analysisFirst, keysSummary, asText, ""),
		Purpose:          pickOr(analysisFirst, keysPurpose, asText, ""),
		PaymentDiscussed: pickOr(analysisFirst, keysPaymentDiscussed, asTriState, Unknown),
		AgentPerformance: pickOr(analysisFirst, keysAgentPerformance, asText, ""),
		ScoreBreakdown:   pickOr(analysisFirst, keysScoreBreakdown, asScores, []Score{}),
		Improvements:     pickOr(analysisFirst, keysImprovements, asLines, []string{}),
		Positives:        pickOr(analysisFirst, keysPositives, asLines, []string{}),
		UnresolvedIssues: pickOr(analysisFirst, keysUnresolved, asLines, []string{}),
		Transcript:       pickOr(rootFirst, keysTranscript, asTranscript, ""),
		MarkedTranscript: pickOr(analysisFirst, keysMarkedTranscript, asMarkedLines, []string{}),
	}

	c.Timestamp = pickOr(rootFirst, keysTimestamp, asTime, c.Timestamp)
	c.PaymentAmount, _ = pick(analysisFirst, keysPaymentAmount, asAmount)
	c.TotalScore, _ = pick(analysisFirst, keysTotalScore, asScorePtr)

	c.Sentiment.Overall = pickOr(analysisFirst, keysSentimentOverall, asSentiment, "")
	if c.Sentiment.Overall == "" {
		c.Sentiment.Overall = pickOr(speakers, keysSpeakerOverall, asSentiment, SentimentUnknown)
	}
	c.Sentiment.Agent = pickOr(speakerFirst, keysAgentSentiment, asSentiment, SentimentUnknown)
	c.Sentiment.Counterparty = pickOr(speakerFirst, keysCounterpartySentiment, asSentiment, SentimentUnknown)

	c.FollowUp.Required = pickOr(analysisFirst, keysFollowUpRequired, asTriState, "")
	if c.FollowUp.Required == "" {
		c.FollowUp.Required = pickOr(followUps, keysNestedRequired, asTriState, Unknown)
	}
	c.FollowUp.Details = pickOr(analysisFirst, keysFollowUpDetails, asText, "")
	if c.FollowUp.Details == "" {
		c.FollowUp.Details = pickOr(followUps, keysNestedDetails, asText, "")
	}

	return c, nil
}

func toRoot(raw Raw) (scope, error) {
	switch t := raw.(type) {
	case json.RawMessage:
		return decodeRoot(t)
	case []byte:
		return decodeRoot(t)
	case map[string]any:
		if t == nil {
			return nil, errors.NotAnObject("null")
		}
		return t, nil
	default:
		return nil, errors.NotAnObject(kindOf(raw))
	}
}

func decodeRoot(data []byte) (scope, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.NotAnObject("malformed JSON")
	}
	return toRoot(v)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
