package model

// Intent is the coarse purpose of one utterance.
type Intent string

const (
	IntentQueryNotes    Intent = "query_notes"
	IntentSearchRequest Intent = "search_request"
	IntentCreateNote    Intent = "create_note"
	IntentOpinionNotes  Intent = "opinion_notes"
	IntentEmotional     Intent = "emotional"
	IntentCasual        Intent = "casual"
	IntentAction        Intent = "action"
	IntentMeta          Intent = "meta"
)

// IntentPriority is the deterministic tie-break order used when two intents
// score the same. Earlier wins.
var IntentPriority = []Intent{
	IntentQueryNotes,
	IntentSearchRequest,
	IntentCreateNote,
	IntentOpinionNotes,
	IntentEmotional,
	IntentCasual,
	IntentAction,
	IntentMeta,
}

// IsNotesLookup reports whether the intent asks for something stored in the notes app.
func (i Intent) IsNotesLookup() bool {
	return i == IntentQueryNotes || i == IntentSearchRequest
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentQuestion Sentiment = "question"
)

// SyntaxFeatures are independent regex-driven flags over one utterance.
type SyntaxFeatures struct {
	IsQuestion       bool `json:"is_question"`
	IsCommand        bool `json:"is_command"`
	HasNegation      bool `json:"has_negation"`
	AboutNotes       bool `json:"about_notes"`
	AboutSelf        bool `json:"about_self"`
	ExpressesEmotion bool `json:"expresses_emotion"`
}

// MessageAnalysis is the read-only result of analyzing one utterance.
type MessageAnalysis struct {
	Intent          Intent         `json:"intent"`
	Sentiment       Sentiment      `json:"sentiment"`
	Confidence      float64        `json:"confidence"`
	Syntax          SyntaxFeatures `json:"syntax"`
	Keywords        []string       `json:"keywords"`
	RequiresTool    bool           `json:"requires_tool"`
	RequiredTools   []string       `json:"required_tools"`
	RequiresContext bool           `json:"requires_context"`
}

// EmptyAnalysis is returned for blank input.
func EmptyAnalysis() MessageAnalysis {
	return MessageAnalysis{
		Intent:        IntentCasual,
		Sentiment:     SentimentNeutral,
		Confidence:    0,
		Keywords:      []string{},
		RequiredTools: []string{},
	}
}
