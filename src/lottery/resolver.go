package lottery

import (
	"sort"
	"strings"
	"time"
)

// Resolve assigns numbers first-come-first-served. Replies are ordered by
// timestamp with the source order breaking ties. Replies after cutoff are
// late regardless of content; the first claim per participant and the first
// claim per number win. The input slice is left untouched.
func Resolve(replies []Reply, cutoff time.Time) Result {
	ordered := make([]Reply, len(replies))
	copy(ordered, replies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	res := Result{
		Cutoff:       cutoff,
		TotalReplies: len(replies),
		Rejected:     []Rejection{},
	}
	seen := make(map[int64]bool)
	accepted := 0

	for i, reply := range ordered {
		if accepted >= SlotCount {
			for _, rest := range ordered[i:] {
				if rest.Timestamp.After(cutoff) {
					res.Rejected = append(res.Rejected, reject(rest, ReasonLate, CategoryLate))
					continue
				}
				res.Rejected = append(res.Rejected, reject(rest, ReasonBoardFull, CategoryInvalid))
			}
			break
		}

		if reply.Timestamp.After(cutoff) {
			res.Rejected = append(res.Rejected, reject(reply, ReasonLate, CategoryLate))
			continue
		}

		number, ok := ExtractNumber(reply.Text)
		if !ok {
			res.Rejected = append(res.Rejected, reject(reply, ReasonNoValidNumber, CategoryInvalid))
			continue
		}
		if seen[reply.FID] {
			res.Rejected = append(res.Rejected, reject(reply, ReasonDuplicateParticipant, CategoryInvalid))
			continue
		}
		idx := slotIndex(number)
		if res.Assignment[idx] != nil {
			res.SkippedDuplicates++
			res.Rejected = append(res.Rejected, reject(reply, ReasonDuplicateNumber, CategoryInvalid))
			continue
		}

		res.Assignment[idx] = &Claim{
			Username:  reply.Username,
			FID:       reply.FID,
			Number:    number,
			Timestamp: reply.Timestamp,
			Comment:   strings.TrimSpace(reply.Text),
		}
		seen[reply.FID] = true
		accepted++
	}

	return res
}

func reject(reply Reply, reason Reason, category Category) Rejection {
	number, ok := ExtractNumber(reply.Text)
	if !ok {
		number = InvalidNumber
	}
	return Rejection{
		FID:       reply.FID,
		Username:  reply.Username,
		Number:    number,
		Timestamp: reply.Timestamp,
		Reason:    reason,
		Category:  category,
	}
}

// slotIndex converts a normalized two-digit number to its slot.
func slotIndex(number string) int {
	return int(number[0]-'0')*10 + int(number[1]-'0')
}
