package testutil

// Report document fixtures in the shapes the analysis backend has produced over time.

// ReportCurrent is the current shape: participants at the root, analysis nested
// under "analysis" with capitalized snake_case keys, Mongo extended JSON ids and dates.
const ReportCurrent = `{
  "_id": {"$oid": "665f1c2e9b1d4a0012345678"},
  "agent_name": "Amina Diallo",
  "patient_name": "Jean Martin",
  "agent_phone_number": "+221770000000",
  "created_at": {"$date": "2025-02-14T09:30:00Z"},
  "transcribe": "Agent: Good morning, this is Amina.\nPatient: Hello, I need to move my appointment.",
  "analysis": {
    "Call_summary": "Patient asked to reschedule a dental appointment.",
    "Call_purpose": "appointment",
    "Sentiment_overall": "positive",
    "Sentiment_by_speaker": {
      "Agent_sentiment": "Positive",
      "Customer_sentiment": "neutral"
    },
    "Payment_discussed": true,
    "Payment_amount": "150 EUR",
    "Follow_up_required": true,
    "Follow_up_details": "Send confirmation SMS.",
    "Agent_performance": "Clear and friendly.",
    "Individual_Scores": {
      "Empathy": 9,
      "Clarity": 7.5,
      "Compliance": 12
    },
    "Total_Score": 8.2,
    "Improvements": ["Confirm the patient's date of birth."],
    "Positives": ["Greeted the patient by name.", "Offered two alternative slots."],
    "Unresolved_issues": [],
    "Marked_Transcript": "[GOOD] Agent: Good morning, this is Amina.\n\n   \n[CHECK] Patient: Hello, I need to move my appointment.\n"
  }
}`

// ReportLegacy is the first shape: everything flat at the root in lower snake_case,
// a nested sentiment object, loosely typed values and epoch-millisecond timestamps.
const ReportLegacy = `{
  "id": "call-001",
  "agent": "Moussa Ba",
  "customer_name": "Claire Dubois",
  "phone_number": "+221780000001",
  "timestamp": 1707903000000,
  "transcript": ["Agent: Hello.", "Customer: My invoice is wrong."],
  "summary": "Billing complaint about a duplicated invoice.",
  "purpose": "billing",
  "sentiment": {"overall": "NEGATIVE", "agent": "neutral", "customer": "negative"},
  "payment_discussed": "no",
  "follow_up_required": "yes",
  "follow_up_details": null,
  "scores": {"politeness": "6", "resolution": -3, "notes": "n/a"},
  "total_score": 15,
  "improvements": "Apologize early.\n\nOffer a callback.",
  "positives": null,
  "marked_transcript": ["[ISSUE] Customer: My invoice is wrong.", "  "]
}`

// ReportCamel is the intermediate shape: camelCase keys and the analysis
// delivered as a JSON-encoded string.
const ReportCamel = `{
  "_id": "abc123",
  "agentName": "Fatou Sow",
  "patientName": "Ali Ndiaye",
  "agentPhoneNumber": "+221760000002",
  "createdAt": "2025-01-05T12:00:00+01:00",
  "analysis": "{\"callSummary\":\"Prescription renewal.\",\"callPurpose\":\"prescription\",\"sentimentOverall\":\"neutral\",\"sentimentBySpeaker\":{\"agentSentiment\":\"positive\",\"patientSentiment\":\"mixed\"},\"paymentDiscussed\":0,\"followUpRequired\":false,\"scoreBreakdown\":[{\"criterion\":\"Accuracy\",\"score\":8},{\"criterion\":\"Tone\",\"score\":\"9.5\"}],\"totalScore\":\"8.75\",\"improvements\":[\"  \",\"Summarize next steps.\"],\"unresolvedIssues\":[\"Pharmacy not confirmed.\"],\"markedTranscript\":\"Agent: renewal approved\"}"
}`
