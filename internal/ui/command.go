package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

// CommandKind identifies what a line typed into the chat box asks for.
type CommandKind int

const (
	CmdChat CommandKind = iota
	CmdLoad
	CmdPlay
	CmdPause
	CmdSeek
	CmdStatus
	CmdHelp
	CmdQuit
)

// Command is a parsed input line.
type Command struct {
	Kind     CommandKind
	Text     string
	Position float64
}

var ErrUnknownCommand = errors.New("unknown command")

// HelpText lists the slash commands.
const HelpText = "/load <url>  /play  /pause  /seek <1:23|83>  /status  /quit"

// ParseCommand turns an input line into a Command. Lines not starting with
// a slash are chat.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: CmdChat, Text: line}, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "load", "l":
		if arg == "" {
			return Command{}, fmt.Errorf("usage: /load <youtube url>")
		}
		return Command{Kind: CmdLoad, Text: arg}, nil

	case "play", "p":
		return Command{Kind: CmdPlay}, nil

	case "pause":
		return Command{Kind: CmdPause}, nil

	case "seek", "s":
		pos, err := utils.ParsePosition(arg)
		if err != nil {
			return Command{}, fmt.Errorf("usage: /seek <1:23|83>: %w", err)
		}
		return Command{Kind: CmdSeek, Position: pos}, nil

	case "status":
		return Command{Kind: CmdStatus}, nil

	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil

	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	}

	return Command{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
}
