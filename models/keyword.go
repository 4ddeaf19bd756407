package models

import "sort"

// Action is the behavior bound to a global keyword.
type Action int

const (
	ActionStop Action = iota + 1
	ActionHelp
	ActionBack
	ActionRoot
)

func (a Action) String() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionHelp:
		return "help"
	case ActionBack:
		return "back"
	case ActionRoot:
		return "root"
	default:
		return "unknown"
	}
}

// keywords are matched before any tree lookup and can never be used as a
// command or path segment name.
var keywords = map[string]Action{
	"STOP":   ActionStop,
	"EXIT":   ActionStop,
	"LEAVE":  ActionStop,
	"QUIT":   ActionStop,
	"Q":      ActionStop,
	"HELP":   ActionHelp,
	"BACK":   ActionBack,
	"RETURN": ActionBack,
	"ROOT":   ActionRoot,
}

// LookupKeyword returns the action bound to word, if it is a keyword.
func LookupKeyword(word string) (Action, bool) {
	a, ok := keywords[Normalize(word)]
	return a, ok
}

// IsReserved reports whether name is a global keyword.
func IsReserved(name string) bool {
	_, ok := LookupKeyword(name)
	return ok
}

// Keywords returns all reserved words, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
