// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/meta"
)

// checkCommandAction fails when the store is missing a required collection.
func checkCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := newManager(ctx, cmd, s)
	if err != nil {
		return err
	}

	ok, missing := m.CheckCompatibility(ctx)
	if !ok {
		return fmt.Errorf("store is missing: %s", strings.Join(missing, ", "))
	}
	fmt.Fprintln(stdout(cmd), "ok")
	return nil
}

func checkCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "check that the store holds products and categories",
		UsageText: "catsync check [--store spec]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("check", meta.Config.Source),
		},
		Action: checkCommandAction,
	}
}
