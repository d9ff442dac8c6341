// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeLen(t *testing.T) {
	tests := []struct {
		name string
		hdr  Header
	}{
		{
			name: "empty",
		},
		{
			name: "all fields set",
			hdr: Header{
				Name:      "dev/very/long/path/that/does/not/matter",
				Inode:     0xffffffff,
				Mode:      TypeChar | ModePerm,
				UID:       0xffff,
				GID:       0xffff,
				Links:     12,
				ModTime:   time.Unix(1<<31-1, 0),
				Size:      1 << 30,
				RDevMajor: 5,
				RDevMinor: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The name field is not part of the fixed-width section.
			assert.Len(t, tt.hdr.encode(), headerLen)
		})
	}
}

func TestHeaderMtime(t *testing.T) {
	tests := []struct {
		name     string
		modTime  time.Time
		expected int64
	}{
		{
			name:     "zero value",
			expected: 0,
		},
		{
			name:     "before epoch",
			modTime:  time.Unix(-1, 0),
			expected: 0,
		},
		{
			name:     "epoch",
			modTime:  time.Unix(0, 0),
			expected: 0,
		},
		{
			name:     "after epoch",
			modTime:  time.Unix(1700000000, 0),
			expected: 1700000000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := Header{ModTime: tt.modTime}
			assert.Equal(t, tt.expected, hdr.mtime())
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	hdr := Header{
		Name:  "some/file",
		Inode: 9,
		Mode:  TypeReg | 0o640,
		Links: 1,
		Size:  5,
	}

	decoded, nameLen, err := decodeHeader(hdr.encode())
	require.NoError(t, err)

	assert.EqualValues(t, 9, decoded.Inode, "inode")
	assert.Equal(t, TypeReg|0o640, decoded.Mode, "mode")
	assert.Equal(t, 1, decoded.Links, "links")
	assert.EqualValues(t, 5, decoded.Size, "size")
	assert.Equal(t, len("some/file")+1, nameLen, "namesize")
}

func TestPadLen(t *testing.T) {
	tests := []struct {
		position int64
		alignTo  int64
		expected int64
	}{
		{0, 4, 0},
		{1, 4, 3},
		{2, 4, 2},
		{110, 4, 2},
		{112, 4, 0},
		{512, 512, 0},
		{513, 512, 511},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, padLen(tt.position, tt.alignTo),
			"padLen(%d, %d)", tt.position, tt.alignTo)
	}
}
