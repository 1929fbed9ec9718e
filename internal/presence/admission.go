package presence

import (
	"github.com/fentz26/breakroom/internal/models"
)

// Transition describes what the controller did with one intent.
type Transition struct {
	Outcome models.Outcome
	From    models.State
	To      models.State

	// PrevLabel and Label are set for proposals.
	PrevLabel string
	Label     string
}

// Committed reports whether the registry was changed.
func (t Transition) Committed() bool {
	return t.Outcome.Mutates()
}

// Ended returns the logged state the agent left, if any.
func (t Transition) Ended() (models.State, bool) {
	if t.Committed() && t.From != t.To && t.From.Logged() {
		return t.From, true
	}
	return "", false
}

// Started returns the logged state the agent entered, if any.
func (t Transition) Started() (models.State, bool) {
	if t.Committed() && t.From != t.To && t.To.Logged() {
		return t.To, true
	}
	return "", false
}

// Controller applies intents to a registry under the capacity limits.
// Capacity is checked against the registry at the moment of the request;
// nothing is reserved and rejected requests are not queued.
type Controller struct {
	registry *Registry
	capacity Capacity
}

// NewController creates a controller that owns registry.
func NewController(registry *Registry, capacity Capacity) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Controller{
		registry: registry,
		capacity: capacity,
	}
}

// Registry returns the controlled registry.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Capacity returns the configured limits.
func (c *Controller) Capacity() Capacity {
	return c.capacity
}

// Admit decides on intent for the agent and, when allowed, mutates the
// registry. Entering any tracked state vacates the previous one.
func (c *Controller) Admit(id models.AgentID, displayName string, in models.Intent) Transition {
	from := c.registry.State(id)
	t := Transition{From: from, To: from}

	switch in.Kind {
	case models.IntentReturn:
		if from == models.StateActive {
			t.Outcome = models.OutcomeNotTracked
			return t
		}
		c.registry.Remove(id)
		t.To = models.StateActive
		t.Outcome = models.OutcomeReturned

	case models.IntentProposeBreak:
		return c.propose(id, displayName, in.TimeLabel, from)

	case models.IntentGoOffline, models.IntentTakeBreak, models.IntentTakeAdhoc:
		target := in.Target()
		if from == target {
			t.Outcome = models.OutcomeAlreadyInState
			return t
		}
		if !c.admits(target) {
			t.Outcome = models.OutcomeCapacityExceeded
			return t
		}
		c.registry.Put(id, displayName, target, "")
		t.To = target
		t.Outcome = models.OutcomeTransitioned

	case models.IntentStatus:
		t.Outcome = models.OutcomeStatus

	default:
		t.Outcome = models.OutcomeUnrecognized
	}
	return t
}

// propose records, updates or ignores a break proposal. Proposals are not
// capacity limited.
func (c *Controller) propose(id models.AgentID, displayName, label string, from models.State) Transition {
	t := Transition{From: from, To: models.StateProposed, Label: label}

	if from != models.StateProposed {
		c.registry.Put(id, displayName, models.StateProposed, label)
		t.Outcome = models.OutcomeProposalRecorded
		return t
	}

	current, _ := c.registry.Get(id)
	t.PrevLabel = current.TimeLabel
	if current.TimeLabel == label {
		t.Outcome = models.OutcomeAlreadyInState
		return t
	}
	c.registry.Relabel(id, displayName, label)
	t.Outcome = models.OutcomeProposalUpdated
	return t
}

// admits reports whether one more agent fits into target.
func (c *Controller) admits(target models.State) bool {
	return c.registry.Count(target) < c.capacity.Limit(target) &&
		c.registry.AwayTotal() < c.capacity.TotalLimit
}
