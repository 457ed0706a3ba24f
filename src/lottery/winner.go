package lottery

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Draw describes one lottery result to check a snapshot against.
type Draw struct {
	WinningNumbers []string
	UnitReward     decimal.Decimal
	Currency       string
}

// DefaultDraw mirrors the draw the checker ships with.
func DefaultDraw() Draw {
	return Draw{
		WinningNumbers: []string{"05", "17", "22", "88", "99"},
		UnitReward:     decimal.RequireFromString("1.1"),
		Currency:       "USDC",
	}
}

// NormalizeWinningNumbers validates and zero-pads the winning numbers.
func NormalizeWinningNumbers(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		n, err := strconv.Atoi(s)
		if err != nil || len(s) > 2 || n < 0 || n >= SlotCount {
			return nil, fmt.Errorf("invalid winning number %q", s)
		}
		out = append(out, FormatNumber(n))
	}
	return out, nil
}

// Winner is a participant matching at least one winning number.
type Winner struct {
	Claim
	Hits   int             `json:"hits"`
	Reward decimal.Decimal `json:"reward"`
}

// CheckWinners counts one hit per matching winning number for each player.
// Winners keep the order in which they first matched.
func CheckWinners(players []Claim, draw Draw) []Winner {
	var winners []Winner
	index := make(map[int64]int)

	for _, num := range draw.WinningNumbers {
		for _, p := range players {
			if p.Number != num {
				continue
			}
			if i, ok := index[p.FID]; ok {
				winners[i].Hits++
				continue
			}
			index[p.FID] = len(winners)
			winners = append(winners, Winner{Claim: p, Hits: 1})
		}
	}

	for i := range winners {
		winners[i].Reward = draw.UnitReward.Mul(decimal.NewFromInt(int64(winners[i].Hits)))
	}
	return winners
}

// FormatReport writes the winner list followed by a suggested reply per winner.
func FormatReport(w io.Writer, winners []Winner, draw Draw) error {
	if len(winners) == 0 {
		_, err := fmt.Fprintln(w, "No winners this round.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d winner(s):\n\n", len(winners))
	for i, wn := range winners {
		fmt.Fprintf(&b, "#%d: @%s won with %s (%d hit(s)) -> reward %s %s\n",
			i+1, wn.Username, wn.Number, wn.Hits, wn.Reward.StringFixed(2), draw.Currency)
	}
	b.WriteString("\nSuggested replies:\n\n")
	for _, wn := range winners {
		fmt.Fprintf(&b, "-> @%s: %s\n", wn.Username, Congratulation(wn, draw))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Congratulation is the reply text suggested for a winner.
func Congratulation(wn Winner, draw Draw) string {
	return fmt.Sprintf("Congratulations, your number %s hit (%d time(s))! You receive %s %s, sent directly to your wallet.",
		wn.Number, wn.Hits, wn.Reward.StringFixed(2), draw.Currency)
}
