package lottery

import "time"

// Cutoff wall clock in UTC. 10:45 UTC is 17:45 in UTC+7; the offset is fixed
// and no zone database lookup is done.
const (
	CutoffHourUTC   = 10
	CutoffMinuteUTC = 45
)

// CutoffFor returns the cutoff instant on the UTC calendar date of created.
// A root cast created after 10:45 UTC gets a cutoff earlier than itself, so
// every reply on that day is late.
func CutoffFor(created time.Time) time.Time {
	y, m, d := created.UTC().Date()
	return time.Date(y, m, d, CutoffHourUTC, CutoffMinuteUTC, 0, 0, time.UTC)
}
