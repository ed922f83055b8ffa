package engine

import (
	"fmt"
	"strings"
)

// CommandKind identifies a host command.
type CommandKind int

const (
	CmdClear CommandKind = iota
	CmdSave
	CmdToggleGrid
	CmdToggleMenu
	CmdNextMode
	CmdSelectColor
	CmdSetThickness
	CmdSetEnabled
)

var commandNames = map[CommandKind]string{
	CmdClear:        "clear",
	CmdSave:         "save",
	CmdToggleGrid:   "grid",
	CmdToggleMenu:   "menu",
	CmdNextMode:     "mode",
	CmdSelectColor:  "color",
	CmdSetThickness: "thickness",
	CmdSetEnabled:   "enabled",
}

// String returns the wire name of the command.
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is an out-of-band request from the tray or HTTP API. Commands are
// queued and applied by the frame loop so the engine keeps a single writer.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Value int         `json:"value,omitempty"`
}

// ParseCommand builds a command from its wire name and integer argument.
func ParseCommand(name string, value int) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range commandNames {
		if n == name {
			return Command{Kind: kind, Value: value}, nil
		}
	}
	switch name {
	case "enable":
		return Command{Kind: CmdSetEnabled, Value: 1}, nil
	case "disable":
		return Command{Kind: CmdSetEnabled, Value: 0}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", name)
}
