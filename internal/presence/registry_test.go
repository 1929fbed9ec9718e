package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/breakroom/internal/models"
)

var testTime = time.Date(2024, 11, 12, 14, 0, 0, 0, time.UTC)

func TestRegistry_InsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Put("c", "Carol", models.StateBreak, "")
	r.Put("a", "Alice", models.StateBreak, "")
	r.Put("b", "Bob", models.StateBreak, "")

	members := r.Members(models.StateBreak)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, []string{
		members[0].DisplayName, members[1].DisplayName, members[2].DisplayName,
	})

	// Re-entering a state moves the agent to the back.
	r.Put("c", "Carol", models.StateAdhoc, "")
	r.Put("c", "Carol", models.StateBreak, "")
	members = r.Members(models.StateBreak)
	assert.Equal(t, models.AgentID("c"), members[2].AgentID)
}

func TestRegistry_PutReplacesState(t *testing.T) {
	r := NewRegistry()
	r.Put("a", "Alice", models.StateOffline, "")
	r.Put("a", "Alice", models.StateProposed, "9:00")

	assert.Equal(t, 1, r.Len())
	assert.Zero(t, r.Count(models.StateOffline))
	assert.Equal(t, 1, r.Count(models.StateProposed))
	assert.Zero(t, r.AwayTotal())
}

func TestRegistry_PutActiveRemoves(t *testing.T) {
	r := NewRegistry()
	r.Put("a", "Alice", models.StateBreak, "")
	r.Put("a", "Alice", models.StateActive, "")

	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, models.StateActive, r.State("a"))
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Put("a", "Alice", models.StateBreak, "")
	r.Put("b", "Bob", models.StateOffline, "")
	r.Put("c", "Carol", models.StateProposed, "9:45 AM")
	r.Put("d", "Dan", models.StateAdhoc, "")

	snap := r.Snapshot(DefaultCapacity(), testTime)

	assert.Equal(t, 3, snap.TotalAway)
	assert.Equal(t, 5, snap.TotalLimit)
	assert.Equal(t, 1, snap.Break.Count)
	assert.Equal(t, 3, snap.Break.Max)
	assert.Equal(t, []models.Member{{AgentID: "c", DisplayName: "Carol", TimeLabel: "9:45 AM"}}, snap.Proposed)
	assert.Equal(t, testTime, snap.TakenAt)

	// The snapshot is detached from later mutations.
	r.Remove("a")
	assert.Equal(t, 1, snap.Break.Count)
	assert.Len(t, snap.Break.Members, 1)
}

func TestCapacity_Validate(t *testing.T) {
	assert.NoError(t, DefaultCapacity().Validate())

	c := DefaultCapacity()
	c.TotalLimit = 0
	assert.ErrorContains(t, c.Validate(), "total_limit")
}
