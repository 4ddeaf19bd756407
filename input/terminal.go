package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
)

// TerminalConfig configures the interactive terminal.
type TerminalConfig struct {
	HistoryFile string
	Stdout      io.Writer
	Stderr      io.Writer
}

// Terminal is a readline-backed LineReader with history and line editing.
type Terminal struct {
	rl *readline.Instance
}

// NewTerminal opens the terminal. The history file's directory is created
// when missing.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	if cfg.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cfg.Stdout,
		Stderr:          cfg.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("readline init: %w", err)
	}
	return &Terminal{rl: rl}, nil
}

// ReadLine shows prompt and blocks for one line.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	return t.rl.Readline()
}

// Stdout returns a writer that redraws the prompt after output.
func (t *Terminal) Stdout() io.Writer { return t.rl.Stdout() }

// Close releases the terminal and unblocks a pending ReadLine.
func (t *Terminal) Close() error { return t.rl.Close() }

// IsInterrupt reports whether err is a Ctrl-C at the prompt.
func IsInterrupt(err error) bool { return err == readline.ErrInterrupt }
