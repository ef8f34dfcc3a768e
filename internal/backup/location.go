// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tfctl/catsync/internal/aws"
)

// Stdio names standard input or output as a location.
const Stdio = "-"

// Locator reads and writes backups at a location: a file path, Stdio, or an
// s3://bucket/key URL.
type Locator struct {
	Stdin  io.Reader
	Stdout io.Writer
	// S3 builds the client for s3:// locations. It is called at most once
	// per operation.
	S3 func(ctx context.Context) (aws.ObjectAPI, error)
}

// NewLocator returns a Locator bound to the process stdio and the default
// AWS credential chain.
func NewLocator(opts ...aws.Option) *Locator {
	return &Locator{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		S3: func(ctx context.Context) (aws.ObjectAPI, error) {
			return aws.NewClient(ctx, opts...)
		},
	}
}

// Read returns the bytes stored at loc.
func (l *Locator) Read(ctx context.Context, loc string) ([]byte, error) {
	switch {
	case loc == Stdio:
		b, err := io.ReadAll(l.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	case aws.IsURL(loc):
		bucket, key, api, err := l.s3(ctx, loc)
		if err != nil {
			return nil, err
		}
		return aws.Get(ctx, api, bucket, key)
	default:
		b, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", loc, err)
		}
		return b, nil
	}
}

// Write stores data at loc, creating parent directories for file paths.
func (l *Locator) Write(ctx context.Context, loc string, data []byte) error {
	switch {
	case loc == Stdio:
		if _, err := l.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}
		return nil
	case aws.IsURL(loc):
		bucket, key, api, err := l.s3(ctx, loc)
		if err != nil {
			return err
		}
		return aws.Put(ctx, api, bucket, key, data)
	default:
		if dir := filepath.Dir(loc); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(loc, data, 0o600); err != nil { //nolint:mnd
			return fmt.Errorf("failed to write %s: %w", loc, err)
		}
		return nil
	}
}

func (l *Locator) s3(ctx context.Context, loc string) (string, string, aws.ObjectAPI, error) {
	bucket, key, ok := aws.ParseURL(loc)
	if !ok {
		return "", "", nil, fmt.Errorf("invalid s3 location %q", loc)
	}
	if l.S3 == nil {
		return "", "", nil, fmt.Errorf("no s3 client configured for %s", loc)
	}
	api, err := l.S3(ctx)
	if err != nil {
		return "", "", nil, err
	}
	return bucket, key, api, nil
}
