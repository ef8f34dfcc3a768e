// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/meta"
)

// syncCommandAction runs one sync and prints the new marker.
func syncCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := newManager(ctx, cmd, s)
	if err != nil {
		return err
	}
	if err := m.Sync(ctx); err != nil {
		return err
	}

	fmt.Fprintln(stdout(cmd), m.Config().LastSync)
	return nil
}

func syncCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "stamp the last sync marker",
		UsageText: "catsync sync [--store spec]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("sync", meta.Config.Source),
		},
		Action: syncCommandAction,
	}
}
