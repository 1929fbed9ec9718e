// Package intent turns free-text chat messages into presence intents.
package intent

import (
	"strings"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/timeslot"
)

// proposalMarker must appear as a whole word for a time mention to count as a
// break proposal.
const proposalMarker = "at"

// keywordRule maps any of its keywords to an intent kind.
type keywordRule struct {
	Kind     models.IntentKind
	Keywords []string
}

// rules are evaluated in order after the proposal check; the first match wins.
// "back" phrasing comes before the category keywords so that "back from break"
// is a return.
var rules = []keywordRule{
	{Kind: models.IntentReturn, Keywords: []string{"back", "did not", "online"}},
	{Kind: models.IntentGoOffline, Keywords: []string{"offline"}},
	{Kind: models.IntentTakeBreak, Keywords: []string{"break"}},
	{Kind: models.IntentTakeAdhoc, Keywords: []string{"adhoc"}},
	{Kind: models.IntentStatus, Keywords: []string{"status"}},
}

// Classify returns exactly one intent for text. It never fails: text that
// matches nothing is IntentUnrecognized.
func Classify(text string) models.Intent {
	text = strings.ToLower(text)

	if containsWord(text, proposalMarker) {
		if label, ok := timeslot.Extract(text); ok {
			return models.Intent{Kind: models.IntentProposeBreak, TimeLabel: label}
		}
	}

	for _, rule := range rules {
		if matchesRule(text, rule) {
			return models.Intent{Kind: rule.Kind}
		}
	}
	return models.Intent{Kind: models.IntentUnrecognized}
}

func matchesRule(text string, rule keywordRule) bool {
	for _, keyword := range rule.Keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// containsWord checks if text contains keyword as a whole word.
func containsWord(text, keyword string) bool {
	for _, word := range strings.Fields(text) {
		if strings.Trim(word, ".,;:!?\"'()[]{}") == keyword {
			return true
		}
	}
	return false
}
