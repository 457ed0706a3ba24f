package lottery

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(h, m, s int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func TestResolveScenario(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	replies := []Reply{
		{FID: 3, Username: "carol", Text: "22", Timestamp: at(11, 0, 0)},
		{FID: 2, Username: "bob", Text: "05", Timestamp: at(9, 45, 0)},
		{FID: 1, Username: "alice", Text: "17", Timestamp: at(9, 30, 0)},
		{FID: 1, Username: "alice", Text: "05", Timestamp: at(9, 0, 0)},
	}

	res := Resolve(replies, cutoff)

	require.Equal(t, 1, res.TotalPlayers())
	claim := res.Assignment[5]
	require.NotNil(t, claim)
	assert.Equal(t, int64(1), claim.FID)
	assert.Equal(t, "05", claim.Number)

	require.Len(t, res.Rejected, 3)
	assert.Equal(t, ReasonDuplicateParticipant, res.Rejected[0].Reason)
	assert.Equal(t, "17", res.Rejected[0].Number)
	assert.Equal(t, ReasonDuplicateNumber, res.Rejected[1].Reason)
	assert.Equal(t, ReasonLate, res.Rejected[2].Reason)
	assert.Equal(t, CategoryLate, res.Rejected[2].Category)
	assert.Equal(t, "22", res.Rejected[2].Number)
	assert.Equal(t, 1, res.SkippedDuplicates)
	assert.Equal(t, 4, res.TotalReplies)
}

func TestResolveLateByOneSecond(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	replies := []Reply{
		{FID: 1, Text: "42", Timestamp: cutoff.Add(time.Second)},
		{FID: 2, Text: "43", Timestamp: cutoff},
	}
	res := Resolve(replies, cutoff)

	assert.Nil(t, res.Assignment[42])
	assert.NotNil(t, res.Assignment[43])
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, ReasonLate, res.Rejected[0].Reason)
}

func TestResolveLateWithoutNumber(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	res := Resolve([]Reply{{FID: 1, Text: "gm", Timestamp: at(12, 0, 0)}}, cutoff)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, ReasonLate, res.Rejected[0].Reason)
	assert.Equal(t, InvalidNumber, res.Rejected[0].Number)
}

func TestResolveNoValidNumber(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	replies := []Reply{
		{FID: 1, Text: "no digits here", Timestamp: at(9, 0, 0)},
		{FID: 1, Text: "ok then 31", Timestamp: at(9, 1, 0)},
	}
	res := Resolve(replies, cutoff)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, ReasonNoValidNumber, res.Rejected[0].Reason)
	assert.Equal(t, CategoryInvalid, res.Rejected[0].Category)
	assert.NotNil(t, res.Assignment[31], "an invalid reply does not use up the participant's claim")
}

func TestResolveTieKeepsSourceOrder(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	ts := at(9, 0, 0)
	replies := []Reply{
		{FID: 7, Username: "first", Text: "05", Timestamp: ts},
		{FID: 8, Username: "second", Text: "05", Timestamp: ts},
	}
	res := Resolve(replies, cutoff)

	require.NotNil(t, res.Assignment[5])
	assert.Equal(t, "first", res.Assignment[5].Username)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, int64(8), res.Rejected[0].FID)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	replies := []Reply{
		{FID: 1, Text: "10", Timestamp: at(10, 0, 0)},
		{FID: 2, Text: "11", Timestamp: at(9, 0, 0)},
	}
	before := append([]Reply(nil), replies...)
	Resolve(replies, cutoff)
	assert.Equal(t, before, replies)
}

func TestResolveIdempotent(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	replies := []Reply{
		{FID: 1, Text: "10", Timestamp: at(9, 0, 0)},
		{FID: 2, Text: "10", Timestamp: at(9, 0, 0)},
		{FID: 3, Text: "x", Timestamp: at(9, 5, 0)},
		{FID: 4, Text: "77", Timestamp: at(11, 0, 0)},
	}
	first := Resolve(replies, cutoff)
	second := Resolve(replies, cutoff)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
}

func TestResolveBoardFull(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	var replies []Reply
	for i := 0; i < SlotCount; i++ {
		replies = append(replies, Reply{FID: int64(i + 1), Text: FormatNumber(i), Timestamp: at(9, 0, i)})
	}
	replies = append(replies,
		Reply{FID: 500, Text: "05", Timestamp: at(9, 30, 0)},
		Reply{FID: 501, Text: "late", Timestamp: at(12, 0, 0)},
	)

	res := Resolve(replies, cutoff)

	assert.True(t, res.IsFull())
	assert.Equal(t, SlotCount, res.TotalPlayers())
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, ReasonBoardFull, res.Rejected[0].Reason)
	assert.Equal(t, CategoryInvalid, res.Rejected[0].Category)
	assert.Equal(t, ReasonLate, res.Rejected[1].Reason, "lateness wins over a full board")
	assert.Equal(t, CategoryLate, res.Rejected[1].Category)
	assert.Equal(t, len(replies), res.TotalPlayers()+len(res.Rejected))
}

func TestResolveInvariants(t *testing.T) {
	cutoff := CutoffFor(at(8, 0, 0))
	var replies []Reply
	for i := 0; i < 400; i++ {
		replies = append(replies, Reply{
			FID:       int64(i % 37),
			Text:      fmt.Sprintf("pick %d", (i*7)%130),
			Timestamp: at(9, i%60, i%13),
		})
	}
	res := Resolve(replies, cutoff)

	fids := map[int64]bool{}
	for i, c := range res.Assignment {
		if c == nil {
			continue
		}
		assert.Equal(t, FormatNumber(i), c.Number)
		assert.False(t, fids[c.FID], "participant %d accepted twice", c.FID)
		fids[c.FID] = true
	}
	assert.Equal(t, len(replies), res.TotalPlayers()+len(res.Rejected))
	assert.Len(t, res.Assignment.Slots(), SlotCount)
}
