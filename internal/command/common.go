// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/attrs"
	"github.com/tfctl/catsync/internal/aws"
	"github.com/tfctl/catsync/internal/backup"
	"github.com/tfctl/catsync/internal/config"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/meta"
	"github.com/tfctl/catsync/internal/notify"
	"github.com/tfctl/catsync/internal/store"
	"github.com/tfctl/catsync/internal/syncer"
)

// storeSource names the live store as a diff source.
const storeSource = "@store"

// archivePrefix marks a diff or restore source that names an archived
// backup, e.g. "archive:backup-20260101T000000Z.json".
const archivePrefix = "archive:"

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BuildAttrs starts from defaults and merges --attrs over them.
func BuildAttrs(cmd *cli.Command, defaults attrs.AttrList) (attrs.AttrList, error) {
	al := append(attrs.AttrList(nil), defaults...)
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, err
		}
	}
	return al, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if r := cmd.Root(); r != nil && r.Writer != nil {
		return r.Writer
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if r := cmd.Root(); r != nil && r.ErrWriter != nil {
		return r.ErrWriter
	}
	return os.Stderr
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root(); r != nil && r.Reader != nil {
		return r.Reader
	}
	return os.Stdin
}

// openStore opens the store named by --store.
func openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	spec := cmd.String("store")
	log.Debugf("opening store: spec=%s", spec)
	s, err := store.Open(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %q: %w", spec, err)
	}
	return s, nil
}

// newNotifier renders notifications on stderr. notify.color in the config
// forces colour on or off.
func newNotifier(cmd *cli.Command) notify.Notifier {
	t := notify.NewTerminal(stderr(cmd))
	if on, err := config.GetBool("notify.color"); err == nil {
		t.WithColor(on)
	}
	return t
}

// configDefaults is syncer.DefaultConfig overridden by the sync.* config keys.
func configDefaults() syncer.Config {
	d := syncer.DefaultConfig()
	if v, err := config.GetBool("sync.auto"); err == nil {
		d.AutoSync = v
	}
	if v, err := config.GetInt("sync.interval"); err == nil && v > 0 {
		d.SyncInterval = v
	}
	if v, err := config.GetBool("sync.notify"); err == nil {
		d.NotifyChanges = v
	}
	return d
}

// newManager builds a Manager over s with the stored configuration loaded.
func newManager(ctx context.Context, cmd *cli.Command, s store.Store, opts ...syncer.Option) (*syncer.Manager, error) {
	opts = append([]syncer.Option{
		syncer.WithNotifier(newNotifier(cmd)),
		syncer.WithClock(GetMeta(cmd).Clock()),
	}, opts...)

	m := syncer.New(s, configDefaults(), opts...)
	if err := m.LoadConfig(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// dataDir is backup.dir from the config, else the default store directory.
func dataDir() (string, error) {
	if dir, err := config.GetString("backup.dir"); err == nil && dir != "" {
		return dir, nil
	}
	dir, ok := store.DefaultDir()
	if !ok {
		return "", fmt.Errorf("no data directory could be resolved")
	}
	return dir, nil
}

func newArchive() (*backup.Archive, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	return backup.NewArchive(dir), nil
}

// newLocator binds backup locations to the command's stdio and the aws.*
// config keys.
func newLocator(cmd *cli.Command) *backup.Locator {
	var opts []aws.Option
	if p, err := config.GetString("aws.profile"); err == nil && p != "" {
		opts = append(opts, aws.WithProfile(p))
	}
	if r, err := config.GetString("aws.region"); err == nil && r != "" {
		opts = append(opts, aws.WithRegion(r))
	}
	if e, err := config.GetString("aws.endpoint"); err == nil && e != "" {
		opts = append(opts, aws.WithEndpoint(e))
	}

	l := backup.NewLocator(opts...)
	l.Stdin = stdin(cmd)
	l.Stdout = stdout(cmd)
	return l
}

// passphrase returns --passphrase, prompting on the terminal when it is not
// set.
func passphrase(cmd *cli.Command) (string, error) {
	if p := cmd.String("passphrase"); p != "" {
		return p, nil
	}
	return backup.PromptPassphrase("Passphrase: ")
}

// readBackup reads a backup document from loc, which may also name an
// archived backup, and unseals it when needed.
func readBackup(ctx context.Context, cmd *cli.Command, loc string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if name, ok := strings.CutPrefix(loc, archivePrefix); ok {
		a, aerr := newArchive()
		if aerr != nil {
			return nil, aerr
		}
		data, err = a.Read(name)
	} else {
		data, err = newLocator(cmd).Read(ctx, loc)
	}
	if err != nil {
		return nil, err
	}

	if !backup.IsSealed(data) {
		return data, nil
	}
	pass, err := passphrase(cmd)
	if err != nil {
		return nil, err
	}
	return backup.Unseal(data, pass)
}
