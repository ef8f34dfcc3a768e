// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tfctl/catsync/internal/log"
)

const (
	archivePrefix = "backup-"
	archiveStamp  = "20060102T150405Z"
	sealedSuffix  = ".sealed.json"
	plainSuffix   = ".json"
)

// Archive keeps timestamped backups in a single directory.
type Archive struct {
	Dir string
}

// ArchiveEntry is one archived backup on disk.
type ArchiveEntry struct {
	Name    string
	Path    string
	Created time.Time
	Size    int64
	Sealed  bool
}

// NewArchive returns the archive living under base/backups.
func NewArchive(base string) *Archive {
	return &Archive{Dir: filepath.Join(base, "backups")}
}

// Save writes data as a new archive entry stamped with now. A save within the
// same second as an earlier one replaces it.
func (a *Archive) Save(data []byte, sealed bool, now time.Time) (ArchiveEntry, error) {
	if err := os.MkdirAll(a.Dir, 0o700); err != nil { //nolint:mnd
		return ArchiveEntry{}, fmt.Errorf("failed to create archive directory: %w", err)
	}

	suffix := plainSuffix
	if sealed {
		suffix = sealedSuffix
	}
	now = now.UTC().Truncate(time.Second)
	name := archivePrefix + now.Format(archiveStamp) + suffix
	path := filepath.Join(a.Dir, name)

	tmp, err := os.CreateTemp(a.Dir, ".backup-*")
	if err != nil {
		return ArchiveEntry{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ArchiveEntry{}, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ArchiveEntry{}, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ArchiveEntry{}, fmt.Errorf("failed to store backup: %w", err)
	}
	log.Debugf("archived backup: path=%s len=%d", path, len(data))

	return ArchiveEntry{
		Name:    name,
		Path:    path,
		Created: now,
		Size:    int64(len(data)),
		Sealed:  sealed,
	}, nil
}

// List returns the archived backups, newest first. A missing directory is an
// empty archive.
func (a *Archive) List() ([]ArchiveEntry, error) {
	des, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	var entries []ArchiveEntry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		created, sealed, ok := parseArchiveName(de.Name())
		if !ok {
			continue
		}
		var size int64
		if info, err := de.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, ArchiveEntry{
			Name:    de.Name(),
			Path:    filepath.Join(a.Dir, de.Name()),
			Created: created,
			Size:    size,
			Sealed:  sealed,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.After(entries[j].Created)
	})
	return entries, nil
}

// Read returns the contents of an archived backup by name.
func (a *Archive) Read(name string) ([]byte, error) {
	if _, _, ok := parseArchiveName(name); !ok || filepath.Base(name) != name {
		return nil, fmt.Errorf("not an archived backup: %s", name)
	}
	b, err := os.ReadFile(filepath.Join(a.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", name, err)
	}
	return b, nil
}

// Prune removes entries older than hours relative to now and returns how many
// were removed. hours <= 0 disables pruning.
func (a *Archive) Prune(hours int, now time.Time) (int, error) {
	if hours <= 0 {
		log.Debug("backup pruning disabled")
		return 0, nil
	}

	entries, err := a.List()
	if err != nil {
		return 0, err
	}

	maxAge := time.Duration(hours) * time.Hour
	removed := 0
	for _, e := range entries {
		if now.Sub(e.Created) <= maxAge {
			continue
		}
		if err := os.Remove(e.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			log.WithError(err).Warnf("failed to remove backup %s", e.Path)
			continue
		}
		log.Debugf("removed backup %s", e.Path)
		removed++
	}
	return removed, nil
}

func parseArchiveName(name string) (time.Time, bool, bool) {
	rest, ok := strings.CutPrefix(name, archivePrefix)
	if !ok {
		return time.Time{}, false, false
	}

	sealed := false
	if stamp, found := strings.CutSuffix(rest, sealedSuffix); found {
		rest, sealed = stamp, true
	} else if stamp, found := strings.CutSuffix(rest, plainSuffix); found {
		rest = stamp
	} else {
		return time.Time{}, false, false
	}

	t, err := time.Parse(archiveStamp, rest)
	if err != nil {
		return time.Time{}, false, false
	}
	return t, sealed, true
}
