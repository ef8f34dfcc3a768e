// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/store"
	"github.com/tfctl/catsync/internal/syncer"
)

// runCommandAction auto-syncs and watches the store until interrupted.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var opts []syncer.Option
	if hook := cmd.String("on-change"); hook != "" {
		opts = append(opts, syncer.WithReloader(shellReloader(cmd, hook)))
	}
	if cmd.IsSet("reload-delay") {
		opts = append(opts, syncer.WithReloadDelay(cmd.Duration("reload-delay")))
	}

	m, err := newManager(ctx, cmd, s, opts...)
	if err != nil {
		return err
	}
	if cmd.IsSet("interval") {
		m.Update(func(c *syncer.Config) { c.SyncInterval = int(cmd.Int("interval")) })
	}

	cfg := m.Config()
	log.Infof("running: autoSync=%t interval=%s notify=%t", cfg.AutoSync, cfg.Interval(), cfg.NotifyChanges)

	if cmd.Bool("sync-now") {
		_ = m.Sync(ctx)
	}

	var w store.Watcher
	if sw, ok := s.(store.Watcher); ok {
		w = sw
	}
	return m.Run(ctx, w)
}

// shellReloader runs hook with sh -c, sharing the command's output streams.
func shellReloader(cmd *cli.Command, hook string) syncer.Reloader {
	return func(ctx context.Context) error {
		log.Debugf("running reload hook: %s", hook)
		c := exec.CommandContext(ctx, "sh", "-c", hook)
		c.Stdout = stdout(cmd)
		c.Stderr = stderr(cmd)
		return c.Run()
	}
}

func runCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "auto-sync and watch the catalog for changes",
		UsageText: "catsync run [--on-change cmd] [--interval ms]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("run", meta.Config.Source),
			&cli.StringFlag{
				Name:  "on-change",
				Usage: "shell command to run after the catalog changes",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("CATSYNC_ON_CHANGE"),
				),
			},
			&cli.IntFlag{
				Name:  "interval",
				Usage: "sync interval in milliseconds for this run",
				Validator: func(v int) error {
					return FlagValidators(v, IntervalValidator)
				},
			},
			&cli.DurationFlag{
				Name:  "reload-delay",
				Usage: "delay between a change and the on-change command",
				Value: syncer.DefaultReloadDelay,
			},
			&cli.BoolFlag{
				Name:  "sync-now",
				Usage: "sync once before waiting for the first interval",
			},
		},
		Action: runCommandAction,
	}
}
