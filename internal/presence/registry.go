package presence

import (
	"sort"
	"time"

	"github.com/fentz26/breakroom/internal/models"
)

// Entry is the tracked state of one agent.
type Entry struct {
	AgentID     models.AgentID
	DisplayName string
	State       models.State
	TimeLabel   string

	// seq orders members of a state by when they entered it.
	seq uint64
}

// Registry maps agents to their current state. Agents that are absent are
// Active. A Registry is not safe for concurrent use; its owner serializes access.
type Registry struct {
	entries map[models.AgentID]*Entry
	nextSeq uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[models.AgentID]*Entry),
	}
}

// Get returns a copy of the agent's entry.
func (r *Registry) Get(id models.AgentID) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// State returns the agent's current state.
func (r *Registry) State(id models.AgentID) models.State {
	if e, ok := r.entries[id]; ok {
		return e.State
	}
	return models.StateActive
}

// Put moves the agent into state, replacing whatever state it held. The agent
// goes to the back of the new state's order.
func (r *Registry) Put(id models.AgentID, displayName string, state models.State, label string) {
	if state == models.StateActive {
		r.Remove(id)
		return
	}
	r.nextSeq++
	r.entries[id] = &Entry{
		AgentID:     id,
		DisplayName: displayName,
		State:       state,
		TimeLabel:   label,
		seq:         r.nextSeq,
	}
}

// Relabel changes a proposal's time label in place, keeping its position.
func (r *Registry) Relabel(id models.AgentID, displayName, label string) {
	if e, ok := r.entries[id]; ok {
		e.TimeLabel = label
		e.DisplayName = displayName
	}
}

// Remove drops the agent, returning it to Active.
func (r *Registry) Remove(id models.AgentID) {
	delete(r.entries, id)
}

// Len returns the number of tracked agents.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Count returns the number of agents in state.
func (r *Registry) Count(state models.State) int {
	n := 0
	for _, e := range r.entries {
		if e.State == state {
			n++
		}
	}
	return n
}

// AwayTotal returns the number of agents counted against the total limit.
func (r *Registry) AwayTotal() int {
	n := 0
	for _, e := range r.entries {
		if e.State.IsAway() {
			n++
		}
	}
	return n
}

// Members returns the agents in state in the order they entered it.
func (r *Registry) Members(state models.State) []models.Member {
	entries := make([]*Entry, 0)
	for _, e := range r.entries {
		if e.State == state {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	members := make([]models.Member, len(entries))
	for i, e := range entries {
		members[i] = models.Member{
			AgentID:     e.AgentID,
			DisplayName: e.DisplayName,
			TimeLabel:   e.TimeLabel,
		}
	}
	return members
}

// Snapshot returns a deep copy of the registry for rendering.
func (r *Registry) Snapshot(c Capacity, at time.Time) models.Snapshot {
	category := func(state models.State) models.Category {
		members := r.Members(state)
		return models.Category{
			Members: members,
			Count:   len(members),
			Max:     c.Limit(state),
		}
	}

	return models.Snapshot{
		Proposed:   r.Members(models.StateProposed),
		Break:      category(models.StateBreak),
		Adhoc:      category(models.StateAdhoc),
		Offline:    category(models.StateOffline),
		TotalAway:  r.AwayTotal(),
		TotalLimit: c.TotalLimit,
		TakenAt:    at,
	}
}
