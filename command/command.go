// Package command parses and executes the operator console lines of both nodes.
package command

import "strings"

// Command is a receiver console command.
type Command uint8

const (
	None Command = iota // empty line
	StopAlert
	SoundOn
	SoundOff
	Status
	Help
	Test
	TestSound
	Clear
	Unknown
)

var names = map[string]Command{
	"stopalert": StopAlert,
	"soundon":   SoundOn,
	"soundoff":  SoundOff,
	"status":    Status,
	"help":      Help,
	"test":      Test,
	"testsound": TestSound,
	"clear":     Clear,
}

func (c Command) String() string {
	for name, cmd := range names {
		if cmd == c {
			return name
		}
	}
	if c == None {
		return "none"
	}
	return "unknown"
}

// Parse trims and lower-cases line and maps it to a command. The normalised
// line is returned for replies.
func Parse(line string) (Command, string) {
	norm := strings.ToLower(strings.TrimSpace(line))
	if norm == "" {
		return None, norm
	}
	if c, ok := names[norm]; ok {
		return c, norm
	}
	return Unknown, norm
}

// SenderCommand is a sender console command.
type SenderCommand uint8

const (
	SenderIgnored SenderCommand = iota
	SetMessage
	PresentCard
)

const (
	MessagePrefix = "MSG:"
	cardPrefix    = "card "
)

// ParseSender recognises "MSG:<text>" (prefix is case sensitive) and
// "card <uid>". Anything else is ignored without a reply.
func ParseSender(line string) (SenderCommand, string) {
	line = strings.TrimRight(line, "\r\n")
	if rest, ok := strings.CutPrefix(line, MessagePrefix); ok {
		return SetMessage, rest
	}
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > len(cardPrefix) && strings.EqualFold(trimmed[:len(cardPrefix)], cardPrefix) {
		return PresentCard, strings.TrimSpace(trimmed[len(cardPrefix):])
	}
	return SenderIgnored, ""
}

// Truncate cuts msg to limit bytes and reports whether it had to.
func Truncate(msg string, limit int) (string, bool) {
	if limit <= 0 || len(msg) <= limit {
		return msg, false
	}
	return msg[:limit], true
}
