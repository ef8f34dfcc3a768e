// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/catsync/internal/aws"
)

func TestArchive_SaveListRead(t *testing.T) {
	a := NewArchive(t.TempDir())

	entries, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	e1, err := a.Save([]byte(`{"v":1}`), false, t1)
	require.NoError(t, err)
	assert.Equal(t, "backup-20260501T100000Z.json", e1.Name)

	e2, err := a.Save([]byte(`{"v":2}`), true, t2)
	require.NoError(t, err)
	assert.Equal(t, "backup-20260501T110000Z.sealed.json", e2.Name)
	assert.True(t, e2.Sealed)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir, "notes.txt"), []byte("x"), 0o600))

	entries, err = a.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e2.Name, entries[0].Name)
	assert.Equal(t, e1.Name, entries[1].Name)
	assert.Equal(t, t2, entries[0].Created)
	assert.Equal(t, int64(7), entries[1].Size)

	b, err := a.Read(e1.Name)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(b))

	_, err = a.Read("notes.txt")
	assert.Error(t, err)
	_, err = a.Read("../backup-20260501T100000Z.json")
	assert.Error(t, err)
}

func TestArchive_Prune(t *testing.T) {
	a := NewArchive(t.TempDir())
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{time.Hour, 30 * time.Hour, 72 * time.Hour} {
		_, err := a.Save([]byte("{}"), false, now.Add(-age))
		require.NoError(t, err)
	}

	n, err := a.Prune(0, now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = a.Prune(24, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := a.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, now.Add(-time.Hour), entries[0].Created)
}

type memS3 struct {
	objects map[string][]byte
}

func (m *memS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	data, ok := m.objects[awsv2.ToString(in.Bucket)+"/"+awsv2.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) PutObject(_ context.Context, in *s3v2.PutObjectInput, _ ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[awsv2.ToString(in.Bucket)+"/"+awsv2.ToString(in.Key)] = data
	return &s3v2.PutObjectOutput{}, nil
}

func TestLocator(t *testing.T) {
	ctx := context.Background()
	remote := &memS3{objects: map[string][]byte{}}
	var out bytes.Buffer
	l := &Locator{
		Stdin:  strings.NewReader(`{"from":"stdin"}`),
		Stdout: &out,
		S3: func(context.Context) (aws.ObjectAPI, error) {
			return remote, nil
		},
	}

	t.Run("stdio", func(t *testing.T) {
		b, err := l.Read(ctx, Stdio)
		require.NoError(t, err)
		assert.Equal(t, `{"from":"stdin"}`, string(b))

		require.NoError(t, l.Write(ctx, Stdio, []byte("hello")))
		assert.Equal(t, "hello", out.String())
	})

	t.Run("file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "nested", "export.json")
		require.NoError(t, l.Write(ctx, p, []byte("{}")))
		b, err := l.Read(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(b))

		_, err = l.Read(ctx, filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("s3", func(t *testing.T) {
		require.NoError(t, l.Write(ctx, "s3://shop/backups/today.json", []byte(`[1]`)))
		assert.Equal(t, []byte(`[1]`), remote.objects["shop/backups/today.json"])

		b, err := l.Read(ctx, "s3://shop/backups/today.json")
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(b))

		_, err = l.Read(ctx, "s3://shop")
		assert.Error(t, err)
	})

	t.Run("s3 without client", func(t *testing.T) {
		bare := &Locator{}
		_, err := bare.Read(ctx, "s3://shop/x.json")
		assert.Error(t, err)
	})
}
