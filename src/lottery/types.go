package lottery

import (
	"fmt"
	"time"
)

// SlotCount is the number of claimable numbers, 00 through 99.
const SlotCount = 100

// InvalidNumber is recorded in the rejection log when no number could be parsed.
const InvalidNumber = "Invalid"

// Reply is a direct reply to the root cast.
type Reply struct {
	Hash      string
	FID       int64
	Username  string
	Text      string
	Timestamp time.Time
}

// Claim is an accepted number selection.
type Claim struct {
	Username  string    `json:"username"`
	FID       int64     `json:"fid"`
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
}

// Category groups rejections.
type Category string

const (
	CategoryLate    Category = "late"
	CategoryInvalid Category = "invalid"
)

// Reason explains why a reply was rejected.
type Reason string

const (
	ReasonLate                 Reason = "late"
	ReasonNoValidNumber        Reason = "no_valid_number"
	ReasonDuplicateParticipant Reason = "duplicate_participant"
	ReasonDuplicateNumber      Reason = "duplicate_number"
	ReasonBoardFull            Reason = "board_full"
)

// Message returns the human readable form of the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonLate:
		return "submitted after the cutoff"
	case ReasonNoValidNumber:
		return "no valid number found"
	case ReasonDuplicateParticipant:
		return "participant already has a number"
	case ReasonDuplicateNumber:
		return "number already taken"
	case ReasonBoardFull:
		return "all numbers already taken"
	default:
		return string(r)
	}
}

// Rejection is an entry in the rejection log.
type Rejection struct {
	FID       int64     `json:"fid"`
	Username  string    `json:"username"`
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
	Reason    Reason    `json:"reason"`
	Category  Category  `json:"category"`
}

// Assignment maps every number 00–99 to at most one claim.
type Assignment [SlotCount]*Claim

// Slot is one row of the enumerated assignment.
type Slot struct {
	Number string `json:"number"`
	Claim  *Claim `json:"claim,omitempty"`
}

// FormatNumber zero-pads n to two digits.
func FormatNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}

// Slots enumerates all 100 slots in order, occupied or not.
func (a *Assignment) Slots() []Slot {
	slots := make([]Slot, 0, SlotCount)
	for i, c := range a {
		slots = append(slots, Slot{Number: FormatNumber(i), Claim: c})
	}
	return slots
}

// Claims returns the occupied slots ordered by number.
func (a *Assignment) Claims() []Claim {
	var claims []Claim
	for _, c := range a {
		if c != nil {
			claims = append(claims, *c)
		}
	}
	return claims
}

// Len returns the number of occupied slots.
func (a *Assignment) Len() int {
	n := 0
	for _, c := range a {
		if c != nil {
			n++
		}
	}
	return n
}

// Result is the outcome of one resolution run.
type Result struct {
	RunID             string      `json:"runId"`
	RootHash          string      `json:"rootHash,omitempty"`
	Cutoff            time.Time   `json:"cutoff"`
	TotalReplies      int         `json:"totalReplies"`
	SkippedDuplicates int         `json:"skippedDuplicates"`
	Assignment        Assignment  `json:"-"`
	Rejected          []Rejection `json:"rejected"`
}

// TotalPlayers is the number of accepted claims.
func (r *Result) TotalPlayers() int {
	return r.Assignment.Len()
}

// IsFull reports whether every number has been claimed.
func (r *Result) IsFull() bool {
	return r.TotalPlayers() >= SlotCount
}
