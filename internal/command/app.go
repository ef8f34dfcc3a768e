// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/config"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the catsync
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is fine; every key has a default.
	cfg, err := config.Load(ns)
	if err != nil {
		log.Debugf("config not loaded: err=%v", err)
		config.Config = config.Type{Namespace: ns}
	}

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Now:         time.Now,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "catsync",
		Usage: "Catalog sync, backup and restore",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "catsync version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		backupsCommandBuilder(meta),
		checkCommandBuilder(meta),
		configCommandBuilder(meta),
		diffCommandBuilder(meta),
		exportCommandBuilder(meta),
		listCommandBuilder(meta),
		restoreCommandBuilder(meta),
		runCommandBuilder(meta),
		statusCommandBuilder(meta),
		syncCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
