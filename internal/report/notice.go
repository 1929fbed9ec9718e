package report

import (
	"fmt"

	"github.com/fentz26/breakroom/internal/models"
)

// NoticeInput carries what Notice needs to phrase an outcome.
type NoticeInput struct {
	DisplayName string
	Intent      models.Intent
	Outcome     models.Outcome
	PrevLabel   string
}

// Notice returns the human-readable reply for one outcome. Status requests and
// unrecognized messages have no notice.
func Notice(in NoticeInput) string {
	name := in.DisplayName
	label := in.Intent.TimeLabel

	switch in.Outcome {
	case models.OutcomeProposalRecorded:
		return fmt.Sprintf("%s, your proposed break time (%s) has been recorded.", name, label)
	case models.OutcomeProposalUpdated:
		return fmt.Sprintf("%s, your break time has been updated from %s to %s.", name, in.PrevLabel, label)
	case models.OutcomeReturned:
		return fmt.Sprintf("**%s is now back to their original work.**", name)
	case models.OutcomeNotTracked:
		return fmt.Sprintf("%s, you're not in any queue.", name)
	case models.OutcomeTransitioned:
		return transitioned(name, in.Intent.Kind)
	case models.OutcomeAlreadyInState:
		return already(name, in.Intent)
	case models.OutcomeCapacityExceeded:
		return limitReached(in.Intent.Kind)
	}
	return ""
}

func transitioned(name string, kind models.IntentKind) string {
	switch kind {
	case models.IntentGoOffline:
		return fmt.Sprintf("%s is now offline.", name)
	case models.IntentTakeBreak:
		return fmt.Sprintf("%s is now on break.", name)
	case models.IntentTakeAdhoc:
		return fmt.Sprintf("**%s is now on ad-hoc work.**", name)
	}
	return ""
}

func already(name string, in models.Intent) string {
	switch in.Kind {
	case models.IntentProposeBreak:
		return fmt.Sprintf("%s, you've already proposed this break time (%s). No changes made.", name, in.TimeLabel)
	case models.IntentGoOffline:
		return fmt.Sprintf("%s, you're already marked as offline.", name)
	case models.IntentTakeBreak:
		return fmt.Sprintf("%s, you're already on break.", name)
	case models.IntentTakeAdhoc:
		return fmt.Sprintf("%s, you're already on ad-hoc work!", name)
	}
	return ""
}

func limitReached(kind models.IntentKind) string {
	switch kind {
	case models.IntentGoOffline:
		return "Offline limit reached. Please wait for someone to return."
	case models.IntentTakeBreak:
		return "Break limit reached. Please wait for someone to return."
	case models.IntentTakeAdhoc:
		return "Ad-hoc work limit reached. Please do your ad-hoc after someone is done with theirs."
	}
	return ""
}
