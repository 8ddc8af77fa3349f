package ui

import "github.com/oakwood-commons/kvfilter/pkg/filter"

// Action is an editor command bound to a key.
type Action string

const (
	ActionQuit        Action = "quit"
	ActionAccept      Action = "accept"
	ActionRun         Action = "run"
	ActionNext        Action = "next"
	ActionPrev        Action = "prev"
	ActionLeft        Action = "left"
	ActionRight       Action = "right"
	ActionHome        Action = "home"
	ActionEnd         Action = "end"
	ActionTokenStart  Action = "token_start"
	ActionTokenEnd    Action = "token_end"
	ActionBackspace   Action = "backspace"
	ActionDelete      Action = "delete"
	ActionDeleteToken Action = "delete_token"
	ActionKillLine    Action = "kill_line"
	ActionHistoryPrev Action = "history_prev"
	ActionHistoryNext Action = "history_next"
)

// KeyBindings maps key strings, as reported by tea.KeyPressMsg.String, to
// actions. Keys not listed insert their text.
var KeyBindings = map[string]Action{
	"ctrl+c":     ActionQuit,
	"esc":        ActionQuit,
	"enter":      ActionAccept,
	"ctrl+s":     ActionRun,
	"tab":        ActionNext,
	"down":       ActionNext,
	"shift+tab":  ActionPrev,
	"up":         ActionPrev,
	"left":       ActionLeft,
	"right":      ActionRight,
	"home":       ActionHome,
	"ctrl+a":     ActionHome,
	"end":        ActionEnd,
	"ctrl+e":     ActionEnd,
	"ctrl+left":  ActionTokenStart,
	"alt+b":      ActionTokenStart,
	"ctrl+right": ActionTokenEnd,
	"alt+f":      ActionTokenEnd,
	"backspace":  ActionBackspace,
	"delete":     ActionDelete,
	"ctrl+w":     ActionDeleteToken,
	"ctrl+u":     ActionKillLine,
	"ctrl+p":     ActionHistoryPrev,
	"ctrl+n":     ActionHistoryNext,
}

var moves = map[Action]filter.Direction{
	ActionLeft:       filter.PrevChar,
	ActionRight:      filter.NextChar,
	ActionHome:       filter.StartOfText,
	ActionEnd:        filter.EndOfText,
	ActionTokenStart: filter.StartOfToken,
	ActionTokenEnd:   filter.EndOfToken,
}

var removals = map[Action]filter.Direction{
	ActionBackspace:   filter.PrevChar,
	ActionDelete:      filter.NextChar,
	ActionDeleteToken: filter.StartOfToken,
	ActionKillLine:    filter.StartOfText,
}

// helpLine lists the main bindings.
const helpLine = "tab/↑↓ select · enter accept/apply, again to run · ctrl+s run · ctrl+p/n history · esc quit"
