package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Command is a parsed user command. The set is closed; ParseCommand
// rejects anything else with a usage message.
type Command interface {
	isCommand()
}

type MsgCommand struct {
	Target string
	Text   string
}

type JoinCommand struct {
	Group string
}

type GroupCommand struct {
	Group string
	Text  string
}

type QuitCommand struct{}

func (MsgCommand) isCommand()   {}
func (JoinCommand) isCommand()  {}
func (GroupCommand) isCommand() {}
func (QuitCommand) isCommand()  {}

// ParseCommand maps one input line to a command. Empty lines parse to a
// nil command with no error.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, nil
	}
	switch {
	case strings.HasPrefix(line, "/quit"):
		return QuitCommand{}, nil
	case strings.HasPrefix(line, "/msg"):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			return nil, fmt.Errorf("Usage: /msg <user> <text>")
		}
		return MsgCommand{Target: parts[1], Text: parts[2]}, nil
	case strings.HasPrefix(line, "/join"):
		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("Usage: /join <group>")
		}
		return JoinCommand{Group: parts[1]}, nil
	case strings.HasPrefix(line, "/group"):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			return nil, fmt.Errorf("Usage: /group <group> <text>")
		}
		return GroupCommand{Group: parts[1], Text: parts[2]}, nil
	default:
		return nil, fmt.Errorf("Unknown command.")
	}
}

// ReadCommands is the blocking input half of the client: it reads lines,
// parses them, and pushes commands onto the queue consumed by Run. Parse
// errors are reported inline and never reach the queue. The channel is
// closed on EOF or after /quit.
func (c *Client) ReadCommands(in io.Reader, commands chan<- Command) {
	defer close(commands)
	c.printf("Commands: /msg <user> <text>, /join <group>, /group <group> <text>, /quit\n")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, err := ParseCommand(scanner.Text())
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		if cmd == nil {
			continue
		}
		commands <- cmd
		if _, quit := cmd.(QuitCommand); quit {
			return
		}
	}
}

// Run consumes the command queue. A /msg runs in its own goroutine so the
// key-fetch wait never blocks the queue: input stays responsive while a
// send is pending. Returns when the queue closes or on /quit.
func (c *Client) Run(commands <-chan Command) {
	for cmd := range commands {
		switch cmd := cmd.(type) {
		case MsgCommand:
			go func() {
				if err := c.SendPrivate(cmd.Target, cmd.Text); err != nil {
					c.printf("Error: %v\n", err)
				}
			}()
		case JoinCommand:
			if err := c.JoinGroup(cmd.Group); err != nil {
				c.printf("Error: %v\n", err)
			}
		case GroupCommand:
			if err := c.SendGroup(cmd.Group, cmd.Text); err != nil {
				c.printf("Error: %v\n", err)
			}
		case QuitCommand:
			c.printf("Quitting...\n")
			_ = c.Close()
			return
		}
	}
}
