package report

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Coercers convert one untyped JSON value into a canonical field value.
// They return false when the value cannot represent the field.

func asObject(v any) (scope, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case string:
		trimmed := strings.TrimSpace(t)
		if !strings.HasPrefix(trimmed, "{") {
			return nil, false
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	default:
		return nil, false
	}
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64, float32, int, int64, json.Number:
		f, ok := asNumber(t)
		if !ok {
			return "", false
		}
		return formatNumber(f), true
	default:
		return "", false
	}
}

// asID accepts strings, integral numbers and extended JSON {"$oid": ...}
func asID(v any) (string, bool) {
	if obj, ok := v.(map[string]any); ok {
		if oid, ok := obj["$oid"].(string); ok {
			return oid, true
		}
		return "", false
	}
	return asText(v)
}

func asAmount(v any) (*string, bool) {
	s, ok := asText(v)
	if !ok {
		return nil, false
	}
	return &s, true
}

func asScore(v any) (float64, bool) {
	f, ok := asNumber(v)
	if !ok {
		return 0, false
	}
	return clamp(f), true
}

func asScorePtr(v any) (*float64, bool) {
	f, ok := asScore(v)
	if !ok {
		return nil, false
	}
	return &f, true
}

func clamp(f float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, f))
}

func asSentiment(v any) (Sentiment, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos":
		return SentimentPositive, true
	case "negative", "neg":
		return SentimentNegative, true
	case "neutral":
		return SentimentNeutral, true
	default:
		return "", false
	}
}

func asTriState(v any) (TriState, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return Yes, true
		}
		return No, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "1":
			return Yes, true
		case "no", "n", "false", "0":
			return No, true
		}
		return "", false
	default:
		f, ok := asNumber(v)
		if !ok {
			return "", false
		}
		switch f {
		case 1:
			return Yes, true
		case 0:
			return No, true
		}
		return "", false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds
const epochMillisThreshold = 1e11

// asTime accepts extended JSON dates, date strings and epoch seconds or
// milliseconds. Zone-less values are taken as UTC.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case map[string]any:
		if inner, ok := t["$date"]; ok && inner != nil {
			return asTime(inner)
		}
		if inner, ok := t["$numberLong"]; ok && inner != nil {
			return asTime(inner)
		}
		return time.Time{}, false
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
		return time.Time{}, false
	default:
		f, ok := asNumber(v)
		if !ok {
			return time.Time{}, false
		}
		return fromEpoch(f)
	}
}

func fromEpoch(f float64) (time.Time, bool) {
	if f <= 0 {
		return time.Time{}, false
	}
	if f >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

// asScores accepts {criterion: score} objects and [{criterion, score}] lists.
// Entries whose score is unusable are dropped.
func asScores(v any) ([]Score, bool) {
	scores := []Score{}

	switch t := v.(type) {
	case map[string]any:
		for name, raw := range t {
			if value, ok := asScore(raw); ok {
				scores = append(scores, Score{Criterion: name, Value: value})
			}
		}
	case []any:
		// criteria are unique; the first usable entry for a name wins
		seen := make(map[string]bool, len(t))
		for _, item := range t {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entryScope := []scope{entry}
			name, ok := pick(entryScope, keysScoreCriterion, asText)
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			if seen[name] {
				continue
			}
			if value, ok := pick(entryScope, keysScoreValue, asScore); ok {
				seen[name] = true
				scores = append(scores, Score{Criterion: name, Value: value})
			}
		}
	default:
		return nil, false
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Criterion < scores[j].Criterion
	})
	return scores, true
}

// asLines accepts a list of strings or one newline-separated string.
// Blank entries are dropped.
func asLines(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return splitLines(t), true
	case []any:
		lines := []string{}
		for _, item := range t {
			s, ok := asText(item)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			lines = append(lines, s)
		}
		return lines, true
	default:
		return nil, false
	}
}

// splitLines splits on newlines, strips carriage returns and drops blank lines
func splitLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// asMarkedLines accepts the marked transcript as one string or a list of strings
func asMarkedLines(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return splitLines(t), true
	case []any:
		var parts []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return splitLines(strings.Join(parts, "\n")), true
	default:
		return nil, false
	}
}

// asTranscript accepts a string, a list of lines or a list of {speaker, text} segments
func asTranscript(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			switch seg := item.(type) {
			case string:
				lines = append(lines, seg)
			case map[string]any:
				segScope := []scope{seg}
				text, ok := pick(segScope, keysSegmentText, asText)
				if !ok {
					continue
				}
				if speaker, ok := pick(segScope, keysSegmentSpeaker, asText); ok && speaker != "" {
					text = speaker + ": " + text
				}
				lines = append(lines, text)
			}
		}
		return strings.Join(lines, "\n"), true
	default:
		return "", false
	}
}
