// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Choice is one selectable snapshot source, typically an archived backup.
type Choice struct {
	ID    string
	Label string
}

// SelectPair lets the user pick two choices. It returns nil if the user quit.
// The returned pair is ordered the way the choices were listed.
func SelectPair(items []Choice) ([]Choice, error) {
	p := tea.NewProgram(model{items: items})
	m, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}
	return m.(model).ordered(), nil
}

type model struct {
	items    []Choice
	cursor   int
	selected []Choice
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			m.selected = nil
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			if len(m.items) == 0 {
				break
			}
			if m.isSelected(m.items[m.cursor]) {
				for i, v := range m.selected {
					if v.ID == m.items[m.cursor].ID {
						m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
						break
					}
				}
			} else if len(m.selected) < 2 {
				m.selected = append(m.selected, m.items[m.cursor])
			}
		case "enter":
			if len(m.selected) == 2 {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select two snapshots to compare:\n\n"
	for i, c := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if m.isSelected(c) {
			mark = "x"
		}
		s += fmt.Sprintf("%s [%s] %s\n", cursor, mark, c.Label)
	}
	return s + "\nSPACE: toggle, ENTER: go, Q/ESCAPE: quit\n"
}

func (m model) isSelected(c Choice) bool {
	for _, v := range m.selected {
		if v.ID == c.ID {
			return true
		}
	}
	return false
}

// ordered returns the selection in list order, or nil unless exactly two
// choices are selected.
func (m model) ordered() []Choice {
	if len(m.selected) != 2 {
		return nil
	}
	var out []Choice
	for _, c := range m.items {
		if m.isSelected(c) {
			out = append(out, c)
		}
	}
	return out
}
