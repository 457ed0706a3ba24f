package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	MaxDiscordMessageLen = 2000
	SafeChunkLen         = 1900
)

// MessageSender is the part of a discordgo session used for announcements.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts winner reports to one channel.
type Announcer struct {
	sender    MessageSender
	channelID string
}

// Open starts a bot session for token and returns an Announcer for channelID
// plus a close func.
func Open(token, channelID string) (*Announcer, func() error, error) {
	if token == "" || channelID == "" {
		return nil, nil, fmt.Errorf("discord token and channel id are required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, nil, fmt.Errorf("create discord session: %w", err)
	}
	if err := s.Open(); err != nil {
		return nil, nil, fmt.Errorf("open discord session: %w", err)
	}
	return NewAnnouncer(s, channelID), s.Close, nil
}

// NewAnnouncer wraps an existing sender.
func NewAnnouncer(sender MessageSender, channelID string) *Announcer {
	return &Announcer{sender: sender, channelID: channelID}
}

// Announce sends the report, split on line boundaries to stay under the
// Discord message limit.
func (a *Announcer) Announce(report string) error {
	for i, chunk := range SplitLines(report, SafeChunkLen) {
		if _, err := a.sender.ChannelMessageSend(a.channelID, chunk); err != nil {
			return fmt.Errorf("send chunk %d: %w", i+1, err)
		}
	}
	return nil
}

// runeCut returns the largest offset <= limit that does not split a rune.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}

// SplitLines groups lines into chunks no longer than limit. A single line
// longer than limit is cut on a rune boundary.
func SplitLines(text string, limit int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		for len(line) > limit {
			flush()
			cut := runeCut(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}
