// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Config describes a complete initramfs image.
type Config struct {
	// Busybox is the path of a statically linked busybox binary that
	// provides the shell and core utilities inside the image. Required.
	Busybox string

	// Modules are kernel module files the init script loads in the given
	// order before anything else happens. A failed load stops the boot.
	Modules []string

	// Data maps file names to contents embedded below run/virtroot/data.
	// The files are written in sorted name order and marked executable.
	Data map[string][]byte

	// Root selects whether the real root is mounted read-only or writable.
	Root RootMode

	// Compression selects the stream compression of the archive. The
	// kernel must be built with the matching RD_* decompressor.
	Compression Compression
}

func (c *Config) validate() error {
	if c.Busybox == "" {
		return ErrNoBusybox
	}

	if c.Root != "" && !c.Root.isKnown() {
		return fmt.Errorf("%w: %s", ErrRootModeInvalid, string(c.Root))
	}

	if c.Compression != "" && !c.Compression.isKnown() {
		return fmt.Errorf("%w: %s", ErrCompressionInvalid, string(c.Compression))
	}

	for name := range c.Data {
		if name == "" || name == "." || name == ".." ||
			strings.ContainsAny(name, "/\x00") {
			return fmt.Errorf("%w: %q", ErrDataNameInvalid, name)
		}
	}

	return nil
}

const (
	// RootModeReadOnly mounts the real root read-only. This is the default.
	RootModeReadOnly RootMode = "ro"
	// RootModeReadWrite mounts the real root writable.
	RootModeReadWrite RootMode = "rw"
)

// RootMode selects how the init script mounts the real root filesystem.
// The zero value behaves like [RootModeReadOnly].
type RootMode string

func (m *RootMode) isKnown() bool {
	knownRootModes := []RootMode{
		RootModeReadOnly,
		RootModeReadWrite,
	}

	return slices.Contains(knownRootModes, *m)
}

// flag returns the mount option the mode translates to.
func (m RootMode) flag() string {
	if m == RootModeReadWrite {
		return string(RootModeReadWrite)
	}

	return string(RootModeReadOnly)
}

// String implements [fmt.Stringer].
func (m RootMode) String() string {
	return m.flag()
}

// MarshalText implements [encoding.TextMarshaler].
func (m RootMode) MarshalText() ([]byte, error) {
	if m != "" && !m.isKnown() {
		return nil, ErrRootModeInvalid
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *RootMode) UnmarshalText(text []byte) error {
	mode := RootMode(text)

	if !mode.isKnown() {
		return ErrRootModeInvalid
	}

	*m = mode

	return nil
}

const (
	// CompressionNone writes the plain archive. This is the default.
	CompressionNone Compression = "none"
	// CompressionGzip compresses the archive with gzip.
	CompressionGzip Compression = "gzip"
	// CompressionZstd compresses the archive with zstandard.
	CompressionZstd Compression = "zstd"
)

// Compression selects how the archive stream is compressed. The zero value
// behaves like [CompressionNone].
type Compression string

func (c *Compression) isKnown() bool {
	knownCompressions := []Compression{
		CompressionNone,
		CompressionGzip,
		CompressionZstd,
	}

	return slices.Contains(knownCompressions, *c)
}

// String implements [fmt.Stringer].
func (c Compression) String() string {
	if c == "" {
		return string(CompressionNone)
	}

	return string(c)
}

// MarshalText implements [encoding.TextMarshaler].
func (c Compression) MarshalText() ([]byte, error) {
	if c != "" && !c.isKnown() {
		return nil, ErrCompressionInvalid
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Compression) UnmarshalText(text []byte) error {
	compression := Compression(text)

	if !compression.isKnown() {
		return ErrCompressionInvalid
	}

	*c = compression

	return nil
}

// newWriter wraps w in the matching compressor. The returned writer must be
// closed to flush all data; the underlying writer stays open.
func (c Compression) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("new zstd writer: %w", err)
		}

		return encoder, nil
	case CompressionNone, "":
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrCompressionInvalid, string(c))
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
