// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/differ"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/output"
	"github.com/tfctl/catsync/internal/store"
)

// diffColumns are the columns of a diff listing.
var diffColumns = []string{"change", "id", "name"}

// diffCommandAction compares one collection between two sources.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	key, err := collectionKey(cmd.String("collection"))
	if err != nil {
		return err
	}

	sources := cmd.Args().Slice()
	if cmd.Bool("pick") {
		picked, err := pickSources()
		if err != nil {
			return err
		}
		if picked == nil {
			log.Debug("picker cancelled")
			return nil
		}
		sources = picked
	}
	if len(sources) != 2 {
		return errors.New("diff needs exactly two sources")
	}

	var snaps [2]catalog.Snapshot
	for i, src := range sources {
		if snaps[i], err = loadCollection(ctx, cmd, src, key); err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
	}

	res := differ.Diff(snaps[0], snaps[1])
	if len(res.Duplicates) > 0 {
		fmt.Fprintf(stderr(cmd), "warning: duplicate ids %v; the last occurrence was compared\n", res.Duplicates)
	}

	cmd.Metadata["header"] = fmt.Sprintf("%s: %s", key, differ.Summary(res))
	opts := output.OptionsFromCommand(cmd)
	if opts.Output == "raw" {
		opts.Output = "json"
	}
	rows := differ.Rows(res)
	output.SortDataset(rows, opts.Sort)
	if err := output.Spit(rows, diffColumns, opts, stdout(cmd)); err != nil {
		return err
	}

	if cmd.Bool("detail") {
		return writeDetail(stdout(cmd), snaps[0], res, opts.Color)
	}
	return nil
}

// writeDetail prints the field changes of every updated item.
func writeDetail(w io.Writer, before catalog.Snapshot, res differ.Result, coloring bool) error {
	old := make(map[string]catalog.Item, len(before))
	for _, item := range before {
		old[differ.Key(item)] = item
	}

	for _, item := range res.Updated {
		key := differ.Key(item)
		text, err := differ.Detail(old[key], item, coloring)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nid %s:\n%s", key, text)
	}
	return nil
}

// loadCollection returns the collection key from src: the live store, an
// archived backup, or a backup location. A source holding a bare JSON array
// is taken as the collection itself.
func loadCollection(ctx context.Context, cmd *cli.Command, src, key string) (catalog.Snapshot, error) {
	if src == storeSource {
		s, err := openStore(ctx, cmd)
		if err != nil {
			return nil, err
		}
		defer s.Close()

		raw, err := store.GetOr(ctx, s, key, "[]")
		if err != nil {
			return nil, err
		}
		return catalog.ParseSnapshot([]byte(raw))
	}

	data, err := readBackup(ctx, cmd, src)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(data)
	if doc.IsArray() {
		return catalog.ParseSnapshot([]byte(doc.Raw))
	}
	field := "products"
	if key == catalog.KeyCategories {
		field = "categories"
	}
	return catalog.ParseSnapshot([]byte(doc.Get(field).Raw))
}

// pickSources offers the live store and the archived backups and returns
// the two picked, or nil if the picker was cancelled.
func pickSources() ([]string, error) {
	a, err := newArchive()
	if err != nil {
		return nil, err
	}
	entries, err := a.List()
	if err != nil {
		return nil, err
	}

	choices := []differ.Choice{{ID: storeSource, Label: "current store"}}
	for _, e := range entries {
		label := fmt.Sprintf("%s  %s", e.Name, humanize.Time(e.Created))
		if e.Sealed {
			label += "  sealed"
		}
		choices = append(choices, differ.Choice{ID: archivePrefix + e.Name, Label: label})
	}
	if len(choices) < 2 {
		return nil, errors.New("nothing to compare: the backup archive is empty")
	}

	picked, err := differ.SelectPair(choices)
	if err != nil || picked == nil {
		return nil, err
	}
	// Older first, so the newer pick is the "new" side.
	return []string{picked[1].ID, picked[0].ID}, nil
}

func diffCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		NewStoreFlag("diff", meta.Config.Source),
		NewPassphraseFlag(),
		&cli.StringFlag{
			Name:  "collection",
			Usage: "products or categories",
			Value: "products",
			Validator: func(value string) error {
				return FlagValidators(value, CollectionValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "detail",
			Usage: "show field changes of updated items",
		},
		&cli.BoolFlag{
			Name:  "pick",
			Usage: "pick the two sources interactively",
		},
	}
	for _, f := range NewGlobalFlags() {
		if n := f.Names()[0]; n == "output" || n == "sort" || n == "titles" || n == "color" || n == "padding" {
			flags = append(flags, f)
		}
	}

	return &cli.Command{
		Name:      "diff",
		Usage:     "compare a collection between two snapshots",
		UsageText: "catsync diff OLD NEW  (each a path, s3://bucket/key, archive:name or @store)",
		Metadata:  map[string]any{"meta": meta},
		Flags:     flags,
		Action:    diffCommandAction,
	}
}
