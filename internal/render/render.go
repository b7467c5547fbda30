// Package render projects canonical reports into display models. It performs
// no I/O and holds no state beyond its configuration.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/diallo/callreview/internal/report"
	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/i18n"
)

// Tiers holds the lower bounds of the good and fair score tiers
type Tiers struct {
	Good float64
	Fair float64
}

// DefaultTiers are used when the configuration leaves thresholds unset
var DefaultTiers = Tiers{Good: 8, Fair: 6}

// Renderer turns canonical reports into ReportViews
type Renderer struct {
	tiers     Tiers
	localizer *i18n.Localizer
}

// New creates a renderer from the render configuration
func New(cfg config.RenderConfig) *Renderer {
	tiers := Tiers{Good: cfg.GoodThreshold, Fair: cfg.FairThreshold}
	if tiers.Good == 0 && tiers.Fair == 0 {
		tiers = DefaultTiers
	}
	return &Renderer{tiers: tiers, localizer: i18n.NewLocalizer(i18n.DefaultLocale)}
}

// Localized returns a copy of the renderer whose labels use l
func (r *Renderer) Localized(l *i18n.Localizer) *Renderer {
	cp := *r
	cp.localizer = l
	return &cp
}

// Tiers returns the configured thresholds
func (r *Renderer) Tiers() Tiers {
	return r.tiers
}

// Render projects c into a ReportView.
// c must come from report.Normalize: a nil report, an unknown enum value or a
// score outside [0, 10] is a caller bug and panics.
func (r *Renderer) Render(c *report.Canonical) ReportView {
	if c == nil {
		panic("render: nil report")
	}

	return ReportView{
		ID:         c.ID,
		Overview:   r.overview(c),
		Breakdown:  r.breakdown(c),
		Transcript: r.transcript(c),
		Flags:      r.flags(c),
	}
}

// Tier maps a score to its presentation tier
func (r *Renderer) Tier(score float64) Tier {
	mustScore(score)
	switch {
	case score >= r.tiers.Good:
		return TierGood
	case score >= r.tiers.Fair:
		return TierFair
	default:
		return TierPoor
	}
}

// SentimentTone maps a sentiment to its badge tone
func SentimentTone(s report.Sentiment) Tone {
	switch s {
	case report.SentimentPositive:
		return ToneSuccess
	case report.SentimentNegative:
		return ToneDanger
	case report.SentimentNeutral:
		return ToneWarning
	case report.SentimentUnknown:
		return ToneSecondary
	}
	panic(fmt.Sprintf("render: invalid sentiment %q", s))
}

func (r *Renderer) overview(c *report.Canonical) Overview {
	o := Overview{
		AgentName:             c.Participants.AgentName,
		CounterpartyName:      c.Participants.CounterpartyName,
		AgentPhone:            c.Participants.AgentPhone,
		Summary:               c.Summary,
		Purpose:               c.Purpose,
		OverallSentiment:      r.sentimentBadge(c.Sentiment.Overall),
		AgentSentiment:        r.sentimentBadge(c.Sentiment.Agent),
		CounterpartySentiment: r.sentimentBadge(c.Sentiment.Counterparty),
		PaymentDiscussed:      r.triStateBadge(c.PaymentDiscussed, ToneSuccess, ToneDanger),
		PaymentAmount:         r.localizer.T("report.not_available"),
		FollowUpRequired:      r.triStateBadge(c.FollowUp.Required, ToneInfo, ToneSecondary),
		FollowUpDetails:       c.FollowUp.Details,
		AgentPerformance:      c.AgentPerformance,
	}
	if c.HasTimestamp() {
		o.CallDate = c.Timestamp.UTC().Format(time.RFC3339)
	}
	if c.PaymentAmount != nil && strings.TrimSpace(*c.PaymentAmount) != "" {
		o.PaymentAmount = *c.PaymentAmount
	}
	return o
}

func (r *Renderer) breakdown(c *report.Canonical) Breakdown {
	b := Breakdown{Criteria: make([]Criterion, 0, len(c.ScoreBreakdown))}
	for _, s := range c.ScoreBreakdown {
		b.Criteria = append(b.Criteria, r.criterion(s.Criterion, criterionLabel(s.Criterion), s.Value))
	}
	if c.TotalScore != nil {
		total := r.criterion("total", "Total", *c.TotalScore)
		b.Total = &total
	}
	return b
}

func (r *Renderer) criterion(key, label string, value float64) Criterion {
	tier := r.Tier(value)
	return Criterion{
		Key:     key,
		Label:   label,
		Value:   value,
		Percent: int(math.Round(value * 10)),
		Display: strconv.FormatFloat(value, 'f', -1, 64) + "/10",
		Tier:    tier,
		Tone:    tierTone(tier),
	}
}

func (r *Renderer) transcript(c *report.Canonical) Transcript {
	t := Transcript{Text: c.Transcript, Marked: nonNil(c.MarkedTranscript)}
	if len(t.Marked) == 0 {
		t.Placeholder = r.localizer.T("report.not_available")
	}
	return t
}

func (r *Renderer) flags(c *report.Canonical) Flags {
	f := Flags{
		Improvements: nonNil(c.Improvements),
		Positives:    nonNil(c.Positives),
		Unresolved:   nonNil(c.UnresolvedIssues),
	}
	if len(f.Unresolved) == 0 {
		f.UnresolvedPlaceholder = r.localizer.T("report.none")
	}
	return f
}

func (r *Renderer) sentimentBadge(s report.Sentiment) Badge {
	return Badge{Label: string(s), Tone: SentimentTone(s)}
}

func (r *Renderer) triStateBadge(t report.TriState, yes, no Tone) Badge {
	switch t {
	case report.Yes:
		return Badge{Label: r.localizer.T("report.yes"), Tone: yes}
	case report.No:
		return Badge{Label: r.localizer.T("report.no"), Tone: no}
	case report.Unknown:
		return Badge{Label: r.localizer.T("report.unknown"), Tone: ToneSecondary}
	}
	panic(fmt.Sprintf("render: invalid tri-state %q", t))
}

func tierTone(t Tier) Tone {
	switch t {
	case TierGood:
		return ToneSuccess
	case TierFair:
		return ToneWarning
	default:
		return ToneDanger
	}
}

// criterionLabel turns "first_call_resolution" into "First call resolution"
func criterionLabel(key string) string {
	label := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if label == "" {
		return key
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}

func mustScore(score float64) {
	if math.IsNaN(score) || score < report.MinScore || score > report.MaxScore {
		panic(fmt.Sprintf("render: score %v outside [%v, %v]", score, report.MinScore, report.MaxScore))
	}
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
