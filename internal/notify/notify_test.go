// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorAndIcon(t *testing.T) {
	tests := []struct {
		kind  Kind
		color string
		icon  string
	}{
		{Success, "#27ae60", "check-circle"},
		{Error, "#e74c3c", "exclamation-circle"},
		{Warning, "#f39c12", "exclamation-triangle"},
		{Info, "#3498db", "info-circle"},
		{Kind("bogus"), "#3498db", "info-circle"},
		{Kind(""), "#3498db", "info-circle"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.color, Color(tt.kind))
			assert.Equal(t, tt.icon, Icon(tt.kind))
		})
	}
}

func TestTerminal_Plain(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminal(&buf)

	n.Notify("Данные синхронизированы", Success)
	n.Notify("something", Kind("odd"))

	assert.Equal(t, "✔ Данные синхронизированы\nℹ something\n", buf.String())
}

func TestTerminal_Color(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminal(&buf).WithColor(true)

	n.Notify("Ошибка синхронизации", Error)

	out := buf.String()
	assert.Contains(t, out, "Ошибка синхронизации")
	assert.NotEqual(t, "✖ Ошибка синхронизации\n", out, "styled output differs from plain")
}

func TestFuncAndRecorder(t *testing.T) {
	var got []string
	var n Notifier = Func(func(msg string, kind Kind) { got = append(got, string(kind)+":"+msg) })
	n.Notify("hi", Warning)
	assert.Equal(t, []string{"warning:hi"}, got)

	Discard.Notify("nothing", Error)

	r := &Recorder{}
	r.Notify("a", Success)
	r.Notify("b", Kind("x"))
	assert.Equal(t, []Entry{{"a", Success}, {"b", Info}}, r.Entries())
}
