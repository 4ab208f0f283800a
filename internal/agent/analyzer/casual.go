package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

// CasualPattern names a kind of small talk.
type CasualPattern string

const (
	CasualGreeting       CasualPattern = "greeting"
	CasualHowAreYou      CasualPattern = "how_are_you"
	CasualThanks         CasualPattern = "thanks"
	CasualGoodbye        CasualPattern = "goodbye"
	CasualAcknowledgment CasualPattern = "acknowledgment"
	CasualAboutYou       CasualPattern = "about_you"
	CasualStatus         CasualPattern = "status"
	CasualNothingNew     CasualPattern = "nothing_new"
	CasualRepeatedChars  CasualPattern = "repeated_chars"
	CasualIntent         CasualPattern = "casual_intent"
	CasualOpenEnded      CasualPattern = "open_ended"
	CasualQuestion       CasualPattern = "casual_question"
	CasualCheckTime      CasualPattern = "check_time"
	CasualTransition     CasualPattern = "transition"
	CasualGeneral        CasualPattern = "general"
)

type casualRule struct {
	pattern CasualPattern
	re      *regexp.Regexp
}

// first match wins
var casualRules = []casualRule{
	{CasualGreeting, regexp.MustCompile(`(?i)^(hey+|hi+|hello+|sup+)\b`)},
	{CasualHowAreYou, regexp.MustCompile(`(?i)\b(how are (you|u)|how('s| is) it going)\b`)},
	{CasualThanks, regexp.MustCompile(`(?i)\b(thanks|thank you|thx|ty)\b`)},
	{CasualGoodbye, regexp.MustCompile(`(?i)\b(bye|goodbye|see you|cya|later)\b`)},
	{CasualAcknowledgment, regexp.MustCompile(`(?i)^(ok|okay|k|sure|yep|yeah|yes|no|nah|fine)\b`)},
	{CasualAboutYou, regexp.MustCompile(`(?i)\b(what about (you|u)|how about (you|u)|(and|but) (you|u)|hbu|wbu)\b`)},
	{CasualStatus, regexp.MustCompile(`(?i)^(i'?m\s+)?(good|fine|great|ok|okay|alright)[\s,!.]*$`)},
	{CasualNothingNew, regexp.MustCompile(`(?i)(nothing|not) (much|new|really)`)},
	{CasualIntent, regexp.MustCompile(`(?i)(just|wanted to|trying to)?\s*(say|tell you|chat|talk|check|wonder|think)`)},
	{CasualOpenEnded, regexp.MustCompile(`(?i)\b(anything|something) (to say|on your mind)`)},
	{CasualQuestion, regexp.MustCompile(`(?i)\b(what do you|what would you|do you have|can you) (think|say|like|want|help with)\b`)},
	{CasualCheckTime, regexp.MustCompile(`(?i)\b(have a (minute|sec|moment)|got a (sec|minute)|do you have time)\b`)},
	{CasualTransition, regexp.MustCompile(`(?i)\b(by the way|while we('re| are)|speaking of|that reminds me|on that note)\b`)},
}

var casualPhrases = toSet(
	"how are you", "how's it going", "what's up", "hey", "hi", "hello",
	"good morning", "good afternoon", "good evening", "good night",
	"thanks", "thank you", "thx", "ty", "cool", "nice", "great",
	"ok", "okay", "k", "bye", "goodbye", "see you", "later",
	"yes", "no", "yeah", "nah", "sure", "good", "fine", "not bad",
	"hbu", "wbu", "sup", "nvm", "brb", "gtg", "idk", "idc",
	"what about you", "and you", "same here", "me too",
	"im good", "i'm good", "nothing new", "nothing much", "not much",
)

// CasualTemplates are canned replies per pattern.
var CasualTemplates = map[CasualPattern][]string{
	CasualGreeting: {
		"Hey! How's your day going?",
		"Hi there! What's new?",
		"Hello! How are you today?",
	},
	CasualHowAreYou: {
		"I'm doing great, thanks for asking! How about you?",
		"All good here! How are you doing?",
		"Pretty good! How's your day been?",
	},
	CasualThanks: {
		"You're welcome!",
		"Anytime!",
		"No problem at all!",
	},
	CasualGoodbye: {
		"Goodbye! Have a great day!",
		"See you later!",
		"Take care!",
	},
	CasualIntent: {
		"I'm here! What's on your mind?",
		"Of course, I'm always happy to chat! What would you like to talk about?",
		"Sure thing! How can I help you today?",
	},
	CasualOpenEnded: {
		"I can help with lots of things! We could look through your notes, brainstorm ideas, or just chat. What interests you?",
		"I'm here to help with whatever you need, from managing notes to finding information or just talking things through.",
		"I'd be happy to help with your notes or have a friendly chat. What would you prefer?",
	},
	CasualCheckTime: {
		"Absolutely! I'm here to help. What's on your mind?",
		"Of course, I always have time to chat. What would you like to discuss?",
		"I'm all ears! What can I help you with?",
	},
	CasualTransition: {
		"Good point! Would you like to explore that topic further?",
		"That's a nice connection. Should we look into it more?",
		"Interesting transition! Would you like to dive deeper into that?",
	},
}

// DetectCasualPattern returns the first small-talk pattern the text matches,
// or CasualGeneral.
func DetectCasualPattern(text string) CasualPattern {
	normalized := NormalizeCasual(text)
	for _, r := range casualRules {
		if r.re.MatchString(normalized) {
			return r.pattern
		}
	}
	if hasRepeatedChars(normalized, 3) {
		return CasualRepeatedChars
	}
	return CasualGeneral
}

// IsCasualPhrase reports an exact match against the known small-talk phrases.
func IsCasualPhrase(text string) bool {
	_, ok := casualPhrases[NormalizeCasual(text)]
	return ok
}

// NormalizeCasual lowercases, trims trailing punctuation and collapses spaces.
func NormalizeCasual(text string) string {
	s := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
}

// hasRepeatedChars reports a run of n or more identical word characters,
// as in "heyyy".
func hasRepeatedChars(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}
