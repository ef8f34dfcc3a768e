// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
	"golang.org/x/term"
)

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Normalize maps unknown kinds to Info.
func (k Kind) Normalize() Kind {
	switch k {
	case Success, Error, Warning, Info:
		return k
	default:
		return Info
	}
}

var colors = map[Kind]string{
	Success: "#27ae60",
	Error:   "#e74c3c",
	Warning: "#f39c12",
	Info:    "#3498db",
}

var icons = map[Kind]string{
	Success: "check-circle",
	Error:   "exclamation-circle",
	Warning: "exclamation-triangle",
	Info:    "info-circle",
}

var glyphs = map[Kind]string{
	Success: "✔",
	Error:   "✖",
	Warning: "▲",
	Info:    "ℹ",
}

// Color returns the background colour for kind as a hex string.
func Color(k Kind) string { return colors[k.Normalize()] }

// Icon returns the Font Awesome icon name for kind, for hosts that render
// HTML toasts.
func Icon(k Kind) string { return icons[k.Normalize()] }

// Notifier displays a message.
type Notifier interface {
	Notify(msg string, kind Kind)
}

// Func adapts a function to Notifier.
type Func func(msg string, kind Kind)

func (f Func) Notify(msg string, kind Kind) { f(msg, kind) }

// Discard drops every notification.
var Discard Notifier = Func(func(string, Kind) {})

// Terminal writes one line per notification. Colour is used only when the
// writer is a terminal or Color is forced on.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewTerminal returns a Terminal notifier writing to w (stderr when nil).
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w, color: isTerminal(w)}
}

// WithColor forces colouring on or off.
func (t *Terminal) WithColor(on bool) *Terminal {
	t.color = on
	return t
}

func (t *Terminal) Notify(msg string, kind Kind) {
	kind = kind.Normalize()
	line := fmt.Sprintf("%s %s", glyphs[kind], msg)
	if t.color {
		line = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color(Color(kind))).
			Padding(0, 1).
			Render(line)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}

// Recorder keeps notifications in memory, for tests and for callers that
// want to inspect what was shown.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is one recorded notification.
type Entry struct {
	Message string
	Kind    Kind
}

func (r *Recorder) Notify(msg string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Kind: kind.Normalize()})
}

// Entries returns a copy of the recorded notifications.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
