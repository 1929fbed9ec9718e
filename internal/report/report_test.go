package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fentz26/breakroom/internal/models"
)

func member(name string) models.Member {
	return models.Member{AgentID: models.AgentID(name), DisplayName: name}
}

func category(max int, names ...string) models.Category {
	members := make([]models.Member, len(names))
	for i, n := range names {
		members[i] = member(n)
	}
	return models.Category{Members: members, Count: len(members), Max: max}
}

func TestFormat_Empty(t *testing.T) {
	snap := models.Snapshot{
		Break:      category(3),
		Adhoc:      category(3),
		Offline:    category(3),
		TotalLimit: 5,
	}

	want := "**__Proposed Break Queue__**\n*None*\n" +
		"**__Break Queue (0/3)__**\n*None*\n" +
		"**__Ad-hoc Queue (0/3)__**\n*None*\n" +
		"**__Offline Agents (0/3)__**\n*None*\n" +
		"\n**Total Away from chat: 0/5**"
	assert.Equal(t, want, Format(snap))
}

func TestFormat_MembersAndLimitMarker(t *testing.T) {
	snap := models.Snapshot{
		Proposed: []models.Member{
			{AgentID: "c", DisplayName: "Carol", TimeLabel: "9:45 AM"},
			{AgentID: "d", DisplayName: "Dan", TimeLabel: "3:00 PM"},
		},
		Break:      category(3, "Alice", "Bob", "Eve"),
		Adhoc:      category(3),
		Offline:    category(3, "Frank"),
		TotalAway:  4,
		TotalLimit: 5,
	}

	want := "**__Proposed Break Queue__**\n- Carol at 9:45 AM\n- Dan at 3:00 PM\n" +
		"**__Break Queue (3/3)__**\n- Alice\n- Bob\n- Eve\n" +
		"\n🚨 **__BREAK QUEUE LIMIT REACHED!__** 🚨\n" +
		"**__Ad-hoc Queue (0/3)__**\n*None*\n" +
		"**__Offline Agents (1/3)__**\n- Frank\n" +
		"\n**Total Away from chat: 4/5**"
	assert.Equal(t, want, Format(snap))
}

func TestFormat_Deterministic(t *testing.T) {
	snap := models.Snapshot{Break: category(1, "Alice"), Adhoc: category(1), Offline: category(1), TotalAway: 1, TotalLimit: 2}
	assert.Equal(t, Format(snap), Format(snap))
}

func TestCompose(t *testing.T) {
	snap := &models.Snapshot{Break: category(3), Adhoc: category(3), Offline: category(3), TotalLimit: 5}

	assert.Equal(t, "Alice, you're already on break.", Compose(models.Result{Notice: "Alice, you're already on break."}))
	assert.Equal(t, Format(*snap), Compose(models.Result{Snapshot: snap}))
	assert.Equal(t, "Alice is now on break.\n\n"+Format(*snap), Compose(models.Result{Notice: "Alice is now on break.", Snapshot: snap}))
}

func TestPeriodic(t *testing.T) {
	snap := models.Snapshot{Break: category(3), Adhoc: category(3), Offline: category(3), TotalLimit: 5}
	assert.Equal(t, "**30-Minute Status Update:**\n"+Format(snap), Periodic("**30-Minute Status Update:**", snap))
}

func TestNotice(t *testing.T) {
	tests := []struct {
		name string
		in   NoticeInput
		want string
	}{
		{
			name: "proposal recorded",
			in:   NoticeInput{DisplayName: "Alice", Intent: models.Intent{Kind: models.IntentProposeBreak, TimeLabel: "9:45 AM"}, Outcome: models.OutcomeProposalRecorded},
			want: "Alice, your proposed break time (9:45 AM) has been recorded.",
		},
		{
			name: "proposal unchanged",
			in:   NoticeInput{DisplayName: "Alice", Intent: models.Intent{Kind: models.IntentProposeBreak, TimeLabel: "9:45 AM"}, Outcome: models.OutcomeAlreadyInState},
			want: "Alice, you've already proposed this break time (9:45 AM). No changes made.",
		},
		{
			name: "proposal updated",
			in:   NoticeInput{DisplayName: "Alice", Intent: models.Intent{Kind: models.IntentProposeBreak, TimeLabel: "10:15 AM"}, Outcome: models.OutcomeProposalUpdated, PrevLabel: "9:45 AM"},
			want: "Alice, your break time has been updated from 9:45 AM to 10:15 AM.",
		},
		{
			name: "returned",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentReturn}, Outcome: models.OutcomeReturned},
			want: "**Bob is now back to their original work.**",
		},
		{
			name: "not tracked",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentReturn}, Outcome: models.OutcomeNotTracked},
			want: "Bob, you're not in any queue.",
		},
		{
			name: "offline",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentGoOffline}, Outcome: models.OutcomeTransitioned},
			want: "Bob is now offline.",
		},
		{
			name: "adhoc",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentTakeAdhoc}, Outcome: models.OutcomeTransitioned},
			want: "**Bob is now on ad-hoc work.**",
		},
		{
			name: "already offline",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentGoOffline}, Outcome: models.OutcomeAlreadyInState},
			want: "Bob, you're already marked as offline.",
		},
		{
			name: "break limit",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentTakeBreak}, Outcome: models.OutcomeCapacityExceeded},
			want: "Break limit reached. Please wait for someone to return.",
		},
		{
			name: "adhoc limit",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentTakeAdhoc}, Outcome: models.OutcomeCapacityExceeded},
			want: "Ad-hoc work limit reached. Please do your ad-hoc after someone is done with theirs.",
		},
		{
			name: "status has no notice",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentStatus}, Outcome: models.OutcomeStatus},
			want: "",
		},
		{
			name: "unrecognized has no notice",
			in:   NoticeInput{DisplayName: "Bob", Intent: models.Intent{Kind: models.IntentUnrecognized}, Outcome: models.OutcomeUnrecognized},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notice(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	snap := models.Snapshot{
		Proposed:   []models.Member{{AgentID: "c", DisplayName: "Carol", TimeLabel: "9:45 AM"}},
		Break:      category(1, "Alice"),
		Adhoc:      category(3),
		Offline:    category(3),
		TotalAway:  1,
		TotalLimit: 5,
	}

	out := Render(snap)

	assert.Contains(t, out, "Carol at 9:45 AM")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "(1/1)")
	assert.Contains(t, out, "limit reached")
	assert.Contains(t, out, "Total away: 1/5")
}
