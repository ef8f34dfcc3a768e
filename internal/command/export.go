// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/backup"
	"github.com/tfctl/catsync/internal/config"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
)

// exportCommandAction writes the catalog to --out and optionally archives a
// copy.
func exportCommandAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	seal := cmd.Bool("seal")
	if seal && format != "json" {
		return fmt.Errorf("only json exports can be sealed")
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
	data, err := m.ExportData(ctx, format)
	if err != nil {
		return err
	}

	if seal {
		pass, err := passphrase(cmd)
		if err != nil {
			return err
		}
		if data, err = backup.Seal(data, pass); err != nil {
			return err
		}
	}

	out := cmd.String("out")
	if format == "json" && out == backup.Stdio {
		data = append(data, '\n')
	}
	if err := newLocator(cmd).Write(ctx, out, data); err != nil {
		return err
	}

	if cmd.Bool("archive") {
		if format != "json" {
			return fmt.Errorf("only json exports can be archived")
		}
		a, err := newArchive()
		if err != nil {
			return err
		}
		entry, err := a.Save(data, seal, GetMeta(cmd).Clock()())
		if err != nil {
			return err
		}
		log.Infof("archived %s", entry.Path)

		retention, _ := config.GetInt("backup.retention", 0)
		if _, err := a.Prune(retention, GetMeta(cmd).Clock()()); err != nil {
			log.WithError(err).Warnf("failed to prune archive")
		}
	}

	return nil
}

func exportCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export the catalog as json or csv",
		UsageText: "catsync export [--format json|csv] [--out path|s3://bucket/key|-]",
		Metadata:  map[string]any{"meta": meta},
		Flags: []cli.Flag{
			NewStoreFlag("export", meta.Config.Source),
			NewPassphraseFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "json or csv",
				Value: "json",
				Validator: func(value string) error {
					return FlagValidators(value, FormatValidator)
				},
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "destination: a file, s3://bucket/key or - for stdout",
				Value: backup.Stdio,
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "also keep a timestamped copy in the backup archive",
			},
			&cli.BoolFlag{
				Name:  "seal",
				Usage: "encrypt the export with a passphrase",
			},
		},
		Action: exportCommandAction,
	}
}
