// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/meta"
)

// restoreCommandAction restores the catalog from a backup location, or from
// the newest archived backup with --latest.
func restoreCommandAction(ctx context.Context, cmd *cli.Command) error {
	src := cmd.Args().First()
	if cmd.Bool("latest") {
		a, err := newArchive()
		if err != nil {
			return err
		}
		entries, err := a.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no archived backups")
		}
		src = archivePrefix + entries[0].Name
	}
	if src == "" {
		return errors.New("missing backup source")
	}

	data, err := readBackup(ctx, cmd, src)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := newManager(ctx, cmd, s)
	if err != nil {
		return err
	}
	return m.RestoreFromBackup(ctx, data)
}

func restoreCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "restore the catalog from a backup",
		UsageText: "catsync restore <path|s3://bucket/key|archive:name|-> | --latest",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("restore", meta.Config.Source),
			NewPassphraseFlag(),
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "restore the newest archived backup",
			},
		},
		Action: restoreCommandAction,
	}
}
