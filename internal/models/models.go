// Package models defines the core domain types for breakroom.
package models

import "time"

// AgentID is the stable identity of a message author. Display names are not identities.
type AgentID string

// State is the presence state of an agent.
type State string

const (
	StateActive   State = "active"
	StateBreak    State = "break"
	StateAdhoc    State = "adhoc"
	StateOffline  State = "offline"
	StateProposed State = "proposed"
)

// IsAway reports whether the state counts against the shared capacity pool.
func (s State) IsAway() bool {
	return s == StateBreak || s == StateAdhoc || s == StateOffline
}

// Logged reports whether entering or leaving the state is written to the durable ledger.
func (s State) Logged() bool {
	return s == StateBreak || s == StateOffline
}

// IntentKind is the action a message asks for.
type IntentKind string

const (
	IntentProposeBreak IntentKind = "propose_break"
	IntentReturn       IntentKind = "return"
	IntentGoOffline    IntentKind = "go_offline"
	IntentTakeBreak    IntentKind = "take_break"
	IntentTakeAdhoc    IntentKind = "take_adhoc"
	IntentStatus       IntentKind = "status"
	IntentUnrecognized IntentKind = "unrecognized"
)

// Intent is the classified form of one inbound message. TimeLabel is only set
// for IntentProposeBreak.
type Intent struct {
	Kind      IntentKind `json:"kind"`
	TimeLabel string     `json:"time_label,omitempty"`
}

// Target returns the state an intent moves the agent into, or StateActive when
// the intent has no target state.
func (i Intent) Target() State {
	switch i.Kind {
	case IntentGoOffline:
		return StateOffline
	case IntentTakeBreak:
		return StateBreak
	case IntentTakeAdhoc:
		return StateAdhoc
	case IntentProposeBreak:
		return StateProposed
	default:
		return StateActive
	}
}

// Outcome is the result of applying an intent.
type Outcome string

const (
	OutcomeTransitioned     Outcome = "transitioned"
	OutcomeReturned         Outcome = "returned"
	OutcomeProposalRecorded Outcome = "proposal_recorded"
	OutcomeProposalUpdated  Outcome = "proposal_updated"
	OutcomeStatus           Outcome = "status"
	OutcomeAlreadyInState   Outcome = "already_in_state"
	OutcomeCapacityExceeded Outcome = "capacity_exceeded"
	OutcomeNotTracked       Outcome = "not_tracked"
	OutcomeUnrecognized     Outcome = "unrecognized"
)

// Mutates reports whether the outcome changed the registry.
func (o Outcome) Mutates() bool {
	switch o {
	case OutcomeTransitioned, OutcomeReturned, OutcomeProposalRecorded, OutcomeProposalUpdated:
		return true
	}
	return false
}

// Message is one inbound chat message.
type Message struct {
	AgentID     AgentID   `json:"agent_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	At          time.Time `json:"at"`
}

// Result is what the coordinator returns for one message. Snapshot is set only
// when the registry changed or a status was requested.
type Result struct {
	AgentID     AgentID   `json:"agent_id"`
	DisplayName string    `json:"display_name"`
	Intent      Intent    `json:"intent"`
	Outcome     Outcome   `json:"outcome"`
	Notice      string    `json:"notice"`
	Changed     bool      `json:"changed"`
	Snapshot    *Snapshot `json:"snapshot,omitempty"`
}

// Member is one agent listed in a snapshot category.
type Member struct {
	AgentID     AgentID `json:"agent_id"`
	DisplayName string  `json:"display_name"`
	TimeLabel   string  `json:"time_label,omitempty"`
}

// Category is the membership of one capacity-limited state.
type Category struct {
	Members []Member `json:"members"`
	Count   int      `json:"count"`
	Max     int      `json:"max"`
}

// Full reports whether the category has reached its maximum.
func (c Category) Full() bool {
	return c.Count >= c.Max
}

// Snapshot is an immutable point-in-time view of the registry. Members are in
// the order they entered their current state.
type Snapshot struct {
	Proposed   []Member  `json:"proposed"`
	Break      Category  `json:"break"`
	Adhoc      Category  `json:"adhoc"`
	Offline    Category  `json:"offline"`
	TotalAway  int       `json:"total_away"`
	TotalLimit int       `json:"total_limit"`
	TakenAt    time.Time `json:"taken_at"`
}

// Absence is a ledger row: one stretch of break or offline time.
type Absence struct {
	ID          string     `json:"id"`
	AgentID     AgentID    `json:"agent_id"`
	DisplayName string     `json:"display_name"`
	Category    State      `json:"category"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// Decision is an audit record of one handled message.
type Decision struct {
	ID         string     `json:"id"`
	AgentID    AgentID    `json:"agent_id"`
	Intent     IntentKind `json:"intent"`
	Outcome    Outcome    `json:"outcome"`
	InputsHash string     `json:"inputs_hash"`
	Details    string     `json:"details,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
