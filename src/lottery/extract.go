package lottery

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches a standalone run of one or two digits. Runs of three
// or more digits never match because there is no word boundary inside them.
var numberPattern = regexp.MustCompile(`\b\d{1,2}\b`)

// ExtractNumber returns the first standalone one or two digit number in text,
// zero-padded to two digits. Later numbers in the text are ignored.
func ExtractNumber(text string) (string, bool) {
	match := numberPattern.FindString(strings.TrimSpace(text))
	if match == "" {
		return "", false
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 0 || n >= SlotCount {
		return "", false
	}
	return FormatNumber(n), true
}
