package render

// Tone is the presentation category of a badge
type Tone string

const (
	ToneSuccess   Tone = "success"
	ToneDanger    Tone = "danger"
	ToneWarning   Tone = "warning"
	ToneInfo      Tone = "info"
	ToneSecondary Tone = "secondary"
)

// Tier is the presentation tier of a score
type Tier string

const (
	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
)

// Section names, in display order
const (
	SectionOverview   = "overview"
	SectionBreakdown  = "breakdown"
	SectionTranscript = "transcript"
	SectionFlags      = "flags"
)

// SectionOrder is the fixed display order of a report
var SectionOrder = []string{SectionOverview, SectionBreakdown, SectionTranscript, SectionFlags}

// Badge is a short labelled value with a tone
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// ReportView is the display model of one canonical report
type ReportView struct {
	ID         string     `json:"id"`
	Overview   Overview   `json:"overview"`
	Breakdown  Breakdown  `json:"breakdown"`
	Transcript Transcript `json:"transcript"`
	Flags      Flags      `json:"flags"`
}

// Section is one named part of a ReportView
type Section struct {
	Name    string `json:"name"`
	Content any    `json:"content"`
}

// Sections returns the view's sections in SectionOrder. Every section is always
// present regardless of which report fields were populated.
func (v ReportView) Sections() []Section {
	return []Section{
		{Name: SectionOverview, Content: v.Overview},
		{Name: SectionBreakdown, Content: v.Breakdown},
		{Name: SectionTranscript, Content: v.Transcript},
		{Name: SectionFlags, Content: v.Flags},
	}
}

// Overview holds participants, call facts and sentiments
type Overview struct {
	AgentName        string `json:"agent_name"`
	CounterpartyName string `json:"counterparty_name"`
	AgentPhone       string `json:"agent_phone"`
	// CallDate is RFC3339 in UTC, empty when the report has no timestamp
	CallDate              string `json:"call_date"`
	Summary               string `json:"summary"`
	Purpose               string `json:"purpose"`
	OverallSentiment      Badge  `json:"overall_sentiment"`
	AgentSentiment        Badge  `json:"agent_sentiment"`
	CounterpartySentiment Badge  `json:"counterparty_sentiment"`
	PaymentDiscussed      Badge  `json:"payment_discussed"`
	PaymentAmount         string `json:"payment_amount"`
	FollowUpRequired      Badge  `json:"follow_up_required"`
	FollowUpDetails       string `json:"follow_up_details"`
	AgentPerformance      string `json:"agent_performance"`
}

// Criterion is one rendered score
type Criterion struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
	Display string  `json:"display"`
	Tier    Tier    `json:"tier"`
	Tone    Tone    `json:"tone"`
}

// Breakdown holds per-criterion scores and the total
type Breakdown struct {
	Criteria []Criterion `json:"criteria"`
	// Total is nil when the report carries no total score
	Total *Criterion `json:"total,omitempty"`
}

// Transcript holds the raw and the marked transcript
type Transcript struct {
	Text   string   `json:"text"`
	Marked []string `json:"marked"`
	// Placeholder is set when there are no marked lines
	Placeholder string `json:"placeholder,omitempty"`
}

// Flags holds the coaching lists
type Flags struct {
	Improvements []string `json:"improvements"`
	Positives    []string `json:"positives"`
	Unresolved   []string `json:"unresolved"`
	// UnresolvedPlaceholder is set when there are no unresolved issues
	UnresolvedPlaceholder string `json:"unresolved_placeholder,omitempty"`
}
