// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/syncer"
)

// configCommandAction updates the persisted sync configuration with whichever
// flags were given and prints the result.
func configCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := newManager(ctx, cmd, s)
	if err != nil {
		return err
	}

	changed := cmd.IsSet("auto-sync") || cmd.IsSet("interval") || cmd.IsSet("notify")
	if changed {
		m.Update(func(c *syncer.Config) {
			if cmd.IsSet("auto-sync") {
				c.AutoSync = cmd.Bool("auto-sync")
			}
			if cmd.IsSet("interval") {
				c.SyncInterval = int(cmd.Int("interval"))
			}
			if cmd.IsSet("notify") {
				c.NotifyChanges = cmd.Bool("notify")
			}
		})
		if err := m.SaveConfig(ctx); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(m.Config(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout(cmd), string(out))
	return nil
}

func configCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "config",
		Usage:     "show or change the sync configuration",
		UsageText: "catsync config [--auto-sync=bool] [--interval ms] [--notify=bool]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("config", meta.Config.Source),
			&cli.BoolFlag{
				Name:  "auto-sync",
				Usage: "sync on an interval while running",
			},
			&cli.IntFlag{
				Name:  "interval",
				Usage: "sync interval in milliseconds",
				Validator: func(value int) error {
					return FlagValidators(value, IntervalValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "notify when another process changes the catalog",
			},
		},
		Action: configCommandAction,
	}
}
