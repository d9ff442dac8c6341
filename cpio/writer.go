// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

var zeroPad [blockSize]byte

// Writer writes a newc archive to an underlying [io.Writer].
//
// The writer tracks the total number of bytes written, since all alignment
// in the format is relative to the start of the stream. Entries are written
// in call order without any buffering, so a failed write leaves a partial
// archive behind.
type Writer struct {
	w io.Writer

	written   int64
	nextInode int64
	closed    bool
}

// NewWriter creates a new archive writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEntry writes a complete entry consisting of header, name and body.
//
// The header is validated before anything is written: the name must be free
// of NUL bytes and all numeric fields must fit their 8 hex digit wire
// encoding, see [ErrInvalidName] and [ErrFieldOverflow]. A rejected entry
// leaves the writer unchanged. Unset metadata is completed as described on
// [Header]. Explicit values are written as given, so entries may share an
// inode number for hard-link semantics and the same name may be written
// more than once. The body must yield exactly hdr.Size bytes and may be nil
// if the size is zero.
func (w *Writer) WriteEntry(hdr *Header, body io.Reader) error {
	if w.closed {
		return ErrWriteAfterClose
	}

	entry := *hdr

	if entry.Links == 0 {
		entry.Links = 1
		if entry.Mode.IsDir() {
			entry.Links = 2
		}
	}

	if entry.Inode == 0 {
		entry.Inode = w.nextInode
	}

	if err := entry.validate(); err != nil {
		return err
	}

	w.nextInode = max(w.nextInode, entry.Inode) + 1

	return w.writeEntry(&entry, body)
}

// WriteDirectory adds a directory entry for the given path to the archive.
func (w *Writer) WriteDirectory(path string) error {
	hdr := &Header{
		Name: path,
		Mode: TypeDir | 0o755,
	}

	return w.WriteEntry(hdr, nil)
}

// WriteLink adds a symbolic link for the given path pointing to the given
// target. The body of a link entry is the target path.
func (w *Writer) WriteLink(path, target string) error {
	hdr := &Header{
		Name: path,
		Mode: TypeSymlink | ModePerm,
		Size: int64(len(target)),
	}

	return w.WriteEntry(hdr, strings.NewReader(target))
}

// WriteRegular copies the existing file from source into the archive. A
// zero perm keeps the permission bits of the source file.
func (w *Writer) WriteRegular(path string, source fs.File, perm FileMode) error {
	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("read info: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, info.Name())
	}

	if perm == 0 {
		perm = FileMode(info.Mode().Perm())
	}

	hdr := &Header{
		Name: path,
		Mode: TypeReg | perm&ModePerm,
		Size: info.Size(),
	}

	return w.WriteEntry(hdr, source)
}

// WriteBytes adds a regular file entry for the given path with the given
// content.
func (w *Writer) WriteBytes(path string, data []byte, perm FileMode) error {
	hdr := &Header{
		Name: path,
		Mode: TypeReg | perm&ModePerm,
		Size: int64(len(data)),
	}

	return w.WriteEntry(hdr, bytes.NewReader(data))
}

// WriteCharDevice adds a character device node for the given path with the
// given device numbers.
func (w *Writer) WriteCharDevice(path string, perm FileMode, major, minor int) error {
	hdr := &Header{
		Name:      path,
		Mode:      TypeChar | perm&ModePerm,
		RDevMajor: major,
		RDevMinor: minor,
	}

	return w.WriteEntry(hdr, nil)
}

// Close writes the trailer entry and pads the archive to the next block
// boundary. The underlying writer is left open.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriteAfterClose
	}

	trailer := &Header{
		Name:  TrailerName,
		Links: 1,
	}

	if err := w.writeEntry(trailer, nil); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}

	if err := w.pad(blockSize); err != nil {
		return err
	}

	w.closed = true

	return nil
}

func (w *Writer) writeEntry(hdr *Header, body io.Reader) error {
	if err := w.write(hdr.encode()); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	name := make([]byte, len(hdr.Name)+1)
	copy(name, hdr.Name)

	if err := w.write(name); err != nil {
		return fmt.Errorf("write name for %s: %w", hdr.Name, err)
	}

	if err := w.pad(4); err != nil {
		return err
	}

	if hdr.Size > 0 {
		if err := w.writeBody(body, hdr.Size); err != nil {
			return fmt.Errorf("write body for %s: %w", hdr.Name, err)
		}
	}

	return w.pad(4)
}

func (w *Writer) writeBody(body io.Reader, size int64) error {
	if body == nil {
		return ErrShortBody
	}

	n, err := io.CopyN(w.w, body, size)
	w.written += n

	if errors.Is(err, io.EOF) {
		return ErrShortBody
	}

	return err
}

// pad writes zero bytes until the total output length is a multiple of
// alignTo.
func (w *Writer) pad(alignTo int64) error {
	fill := padLen(w.written, alignTo)
	if fill == 0 {
		return nil
	}

	if err := w.write(zeroPad[:fill]); err != nil {
		return fmt.Errorf("write padding: %w", err)
	}

	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)

	return err
}
