// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package notify shows short user-facing notifications ("toasts"). The
// Notifier interface is the capability injected into the sync manager; the
// Terminal implementation renders a coloured one-line toast.
package notify
