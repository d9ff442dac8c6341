// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aibor/virtroot/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderFields(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)

	hdr := &cpio.Header{
		Name:      "dev/console",
		Inode:     42,
		Mode:      cpio.TypeChar | 0o660,
		UID:       1000,
		GID:       100,
		Links:     3,
		ModTime:   time.Unix(1700000000, 0),
		RDevMajor: 5,
		RDevMinor: 1,
	}

	require.NoError(t, w.WriteEntry(hdr, nil))
	require.NoError(t, w.Close())

	r := cpio.NewReader(&archive)

	got, err := r.Next()
	require.NoError(t, err)

	assert.Equal(t, "dev/console", got.Name, "name")
	assert.EqualValues(t, 42, got.Inode, "inode")
	assert.Equal(t, cpio.TypeChar|0o660, got.Mode, "mode")
	assert.Equal(t, 1000, got.UID, "uid")
	assert.Equal(t, 100, got.GID, "gid")
	assert.Equal(t, 3, got.Links, "links")
	assert.Equal(t, time.Unix(1700000000, 0), got.ModTime, "mtime")
	assert.EqualValues(t, 0, got.Size, "size")
	assert.Equal(t, 5, got.RDevMajor, "rdevmajor")
	assert.Equal(t, 1, got.RDevMinor, "rdevminor")

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderBody(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)

	require.NoError(t, w.WriteBytes("a", []byte("first"), 0o644))
	require.NoError(t, w.WriteBytes("b", []byte("second"), 0o644))
	require.NoError(t, w.Close())

	r := cpio.NewReader(&archive)

	// Skipping the body of "a" must not derail the stream.
	hdr, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", hdr.Name)

	hdr, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", hdr.Name)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), body)
}

func TestReaderMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{
			name:  "bad magic",
			input: bytes.Repeat([]byte("0"), 512),
		},
		{
			name:  "non hex field",
			input: append([]byte("070701ZZZZZZZZ"), bytes.Repeat([]byte("0"), 96)...),
		},
		{
			name:  "zero namesize",
			input: corruptNamesize(t, "00000000"),
		},
		{
			// An oversized namesize must be rejected before the name
			// buffer is allocated.
			name:  "oversized namesize",
			input: corruptNamesize(t, "FFFFFFF0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cpio.NewReader(bytes.NewReader(tt.input))

			_, err := r.Next()
			require.ErrorIs(t, err, cpio.ErrHeader)
		})
	}
}

func TestReaderTruncated(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)

	require.NoError(t, w.WriteBytes("a", []byte("first"), 0o644))
	require.NoError(t, w.Close())

	r := cpio.NewReader(bytes.NewReader(archive.Bytes()[:50]))

	_, err := r.Next()
	require.Error(t, err)
}

// TestReaderRoundTrip decodes an archive and writes the entries back
// unchanged. The result must be byte identical to the input.
func TestReaderRoundTrip(t *testing.T) {
	var original bytes.Buffer

	w := cpio.NewWriter(&original)

	require.NoError(t, w.WriteDirectory("bin"))
	require.NoError(t, w.WriteLink("sbin", "bin"))
	require.NoError(t, w.WriteBytes("bin/sh", []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, w.WriteCharDevice("dev/null", 0o666, 1, 3))

	// Hard-link pair with a shared explicit inode.
	for _, name := range []string{"bin/cp", "bin/cat"} {
		hdr := &cpio.Header{Name: name, Mode: cpio.TypeReg | 0o755, Inode: 100, Links: 2}
		require.NoError(t, w.WriteEntry(hdr, nil))
	}

	require.NoError(t, w.Close())

	var rewritten bytes.Buffer

	r := cpio.NewReader(bytes.NewReader(original.Bytes()))
	rw := cpio.NewWriter(&rewritten)

	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		body := make([]byte, hdr.Size)
		if hdr.Size > 0 {
			_, err = io.ReadFull(r, body)
			require.NoError(t, err)
		}

		require.NoError(t, rw.WriteEntry(hdr, bytes.NewReader(body)))
	}

	require.NoError(t, rw.Close())

	assert.Equal(t, original.Bytes(), rewritten.Bytes())
}

// corruptNamesize writes a valid single entry archive and overwrites the
// namesize field of the first header with the given 8 hex digits.
func corruptNamesize(t *testing.T, field string) []byte {
	t.Helper()

	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)

	require.NoError(t, w.WriteDirectory("dir"))
	require.NoError(t, w.Close())

	raw := archive.Bytes()
	copy(raw[94:102], field)

	return raw
}
