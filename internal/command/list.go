// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/attrs"
	"github.com/tfctl/catsync/internal/config"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/output"
	"github.com/tfctl/catsync/internal/store"
)

// listCommandAction lists the items of one collection.
func listCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("list needs a collection: products or categories")
	}
	key, err := collectionKey(cmd.Args().First())
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, err := store.GetOr(ctx, s, key, "[]")
	if err != nil {
		return err
	}

	if cmd.Bool("schema") {
		output.DumpSchema(gjson.Parse(raw), stdout(cmd))
		return nil
	}

	// Config list.attrs extends the built-in defaults.
	defaults := attrs.Defaults(key)
	if extra, err := config.GetString("attrs." + key); err == nil {
		if err := defaults.Set(extra); err != nil {
			return fmt.Errorf("invalid attrs.%s in config: %w", key, err)
		}
	}
	al, err := BuildAttrs(cmd, defaults)
	if err != nil {
		return err
	}

	header := ""
	if cmd.String("filter") != "" {
		header = key + " (filtered):"
	}
	cmd.Metadata["header"] = header

	return output.SliceDiceSpit([]byte(raw), al, output.OptionsFromCommand(cmd), stdout(cmd))
}

func listCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list products or categories",
		UsageText: "catsync list products|categories [--filter f] [--sort s] [--attrs a]",
		Metadata:  map[string]any{"meta": meta},
		Flags: append(NewGlobalFlags(),
			NewStoreFlag("list", meta.Config.Source),
			schemaFlag,
		),
		Action: listCommandAction,
	}
}
