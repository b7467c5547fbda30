package report

// Candidate source keys per canonical field, current name first. Matching is
// case and separator agnostic, so Call_summary, call_summary and callSummary are
// one candidate. Only genuinely different names need listing.
var (
	keysID               = []string{"_id", "id", "call_id", "doc_id"}
	keysAgentName        = []string{"agent_name", "agent"}
	keysCounterpartyName = []string{"patient_name", "customer_name", "counterparty_name", "caller_name"}
	keysAgentPhone       = []string{"agent_phone_number", "agent_phone", "phone_number"}
	keysTimestamp        = []string{"created_at", "timestamp", "call_date", "date"}
	keysTranscript       = []string{"transcribe", "transcript", "transcription"}

	keysAnalysis = []string{"analysis", "report", "result"}

	keysSummary          = []string{"call_summary", "summary"}
	keysPurpose          = []string{"call_purpose", "purpose"}
	keysSentimentOverall = []string{"sentiment_overall", "overall_sentiment", "sentiment"}
	keysSpeakerSentiment = []string{"sentiment_by_speaker", "speaker_sentiment", "sentiment"}

	// looked up inside the per-speaker sentiment object, then flat in the analysis
	keysSpeakerOverall        = []string{"overall"}
	keysAgentSentiment        = []string{"agent_sentiment", "agent"}
	keysCounterpartySentiment = []string{
		"customer_sentiment", "patient_sentiment", "counterparty_sentiment",
		"customer", "patient", "counterparty",
	}

	keysPaymentDiscussed = []string{"payment_discussed"}
	keysPaymentAmount    = []string{"payment_amount", "amount"}

	keysFollowUp         = []string{"follow_up"}
	keysFollowUpRequired = []string{"follow_up_required", "follow_up", "requires_follow_up"}
	keysFollowUpDetails  = []string{"follow_up_details"}
	// looked up inside a nested follow-up object
	keysNestedRequired = []string{"required"}
	keysNestedDetails  = []string{"details"}

	keysAgentPerformance = []string{"agent_performance", "performance"}
	keysScoreBreakdown   = []string{"individual_scores", "score_breakdown", "scores"}
	keysTotalScore       = []string{"total_score", "overall_score", "score"}
	keysImprovements     = []string{"improvements", "areas_for_improvement"}
	keysPositives        = []string{"positives", "strengths"}
	keysUnresolved       = []string{"unresolved_issues", "open_issues"}
	keysMarkedTranscript = []string{"marked_transcript", "highlighted_transcript"}

	// entries of a list-shaped score breakdown
	keysScoreCriterion = []string{"criterion", "name", "label"}
	keysScoreValue     = []string{"score", "value"}

	// entries of a segment-shaped transcript
	keysSegmentSpeaker = []string{"speaker", "role"}
	keysSegmentText    = []string{"text", "content"}
)

// Current names used by Denormalize. These match the first candidate of each list.
const (
	nameID               = "_id"
	nameAgentName        = "agent_name"
	nameCounterpartyName = "patient_name"
	nameAgentPhone       = "agent_phone_number"
	nameTimestamp        = "created_at"
	nameTranscript       = "transcribe"
	nameAnalysis         = "analysis"

	nameSummary               = "Call_summary"
	namePurpose               = "Call_purpose"
	nameSentimentOverall      = "Sentiment_overall"
	nameSpeakerSentiment      = "Sentiment_by_speaker"
	nameAgentSentiment        = "Agent_sentiment"
	nameCounterpartySentiment = "Customer_sentiment"
	namePaymentDiscussed      = "Payment_discussed"
	namePaymentAmount         = "Payment_amount"
	nameFollowUpRequired      = "Follow_up_required"
	nameFollowUpDetails       = "Follow_up_details"
	nameAgentPerformance      = "Agent_performance"
	nameScoreBreakdown        = "Individual_Scores"
	nameTotalScore            = "Total_Score"
	nameImprovements          = "Improvements"
	namePositives             = "Positives"
	nameUnresolved            = "Unresolved_issues"
	nameMarkedTranscript      = "Marked_Transcript"
)
