// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/config"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/output"
)

var backupColumns = []string{"name", "created", "size", "sealed"}

// backupsCommandAction lists the archived backups, newest first, or prunes
// them with --prune.
func backupsCommandAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newArchive()
	if err != nil {
		return err
	}
	now := GetMeta(cmd).Clock()()

	if cmd.Bool("prune") {
		hours := int(cmd.Int("older-than"))
		if !cmd.IsSet("older-than") {
			hours, _ = config.GetInt("backup.retention", 0)
		}
		if hours <= 0 {
			return fmt.Errorf("no retention given: set --older-than or backup.retention")
		}
		n, err := a.Prune(hours, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(cmd), "pruned %d backup(s)\n", n)
		return nil
	}

	entries, err := a.List()
	if err != nil {
		return err
	}

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		created := e.Created.Format("2006-01-02 15:04:05Z")
		if !cmd.Bool("exact") {
			created = humanize.RelTime(e.Created, now, "ago", "from now")
		}
		rows = append(rows, map[string]interface{}{
			"name":    e.Name,
			"created": created,
			"size":    humanize.Bytes(uint64(e.Size)),
			"sealed":  e.Sealed,
		})
	}

	return output.Spit(rows, backupColumns, output.OptionsFromCommand(cmd), stdout(cmd))
}

func backupsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "backups",
		Usage:     "list or prune archived backups",
		UsageText: "catsync backups [--prune [--older-than hours]]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "exact",
				Usage: "show creation times instead of ages",
			},
			&cli.IntFlag{
				Name:  "older-than",
				Usage: "with --prune, the age in hours past which backups go",
			},
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
				Name:  "prune",
				Usage: "delete backups older than the retention",
			},
			&cli.BoolFlag{
				Name:    "titles",
				Aliases: []string{"t"},
				Usage:   "show titles with text output",
			},
		},
		Action: backupsCommandAction,
	}
}
