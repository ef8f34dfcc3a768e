// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/output"
	"github.com/tfctl/catsync/internal/store"
)

var statusColumns = []string{"setting", "value"}

// statusCommandAction reports the sync configuration and catalog health.
func statusCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := newManager(ctx, cmd, s)
	if err != nil {
		return err
	}
	cfg := m.Config()
	now := GetMeta(cmd).Clock()()

	rows := []map[string]interface{}{
		{"setting": "store", "value": cmd.String("store")},
		{"setting": "autoSync", "value": cfg.AutoSync},
		{"setting": "syncInterval", "value": cfg.Interval().String()},
		{"setting": "notifyChanges", "value": cfg.NotifyChanges},
		{"setting": "lastSync", "value": lastSyncAge(cfg.LastSync, now)},
	}

	for _, key := range []string{catalog.KeyProducts, catalog.KeyCategories} {
		raw, err := store.GetOr(ctx, s, key, "[]")
		if err != nil {
			return err
		}
		count := "invalid"
		if list := gjson.Parse(raw); list.IsArray() {
			count = humanize.Comma(int64(len(list.Array())))
		}
		rows = append(rows, map[string]interface{}{"setting": key, "value": count})
	}

	ok, missing := m.CheckCompatibility(ctx)
	compat := "yes"
	if !ok {
		compat = "no, missing " + strings.Join(missing, ", ")
	}
	rows = append(rows, map[string]interface{}{"setting": "compatible", "value": compat})

	if a, err := newArchive(); err == nil {
		if entries, err := a.List(); err == nil {
			value := strconv.Itoa(len(entries))
			if len(entries) > 0 {
				value = fmt.Sprintf("%d, newest %s", len(entries), humanize.RelTime(entries[0].Created, now, "ago", "from now"))
			}
			rows = append(rows, map[string]interface{}{"setting": "backups", "value": value})
		} else {
			log.WithError(err).Warnf("failed to list backups")
		}
	}

	return output.Spit(rows, statusColumns, output.OptionsFromCommand(cmd), stdout(cmd))
}

// lastSyncAge renders a lastSync stamp with its age.
func lastSyncAge(stamp string, now time.Time) string {
	if stamp == "" {
		return "never"
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return stamp
	}
	return fmt.Sprintf("%s (%s)", stamp, humanize.RelTime(t, now, "ago", "from now"))
}

func statusCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show sync configuration and catalog status",
		UsageText: "catsync status [--output text|json|yaml]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("status", meta.Config.Source),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format",
				Value:   "text",
				Validator: func(value string) error {
					return FlagValidators(value, OutputValidator)
				},
			},
			&cli.BoolFlag{
				Name:    "titles",
				Aliases: []string{"t"},
				Usage:   "show titles with text output",
			},
		},
		Action: statusCommandAction,
	}
}
