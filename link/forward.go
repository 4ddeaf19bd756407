package link

import "strings"

// Forwarder sends every executed command to the device as a text frame,
// e.g. "robot move 10 20".
type Forwarder struct {
	S Sender
}

// Record encodes the command path (without the root) and its arguments.
func (f Forwarder) Record(path, args []string) error {
	words := make([]string, 0, len(path)+len(args))
	for i, p := range path {
		if i == 0 && len(path) > 1 {
			continue
		}
		words = append(words, strings.ToLower(p))
	}
	return f.S.Send(Frame(strings.Join(append(words, args...), " ")))
}
