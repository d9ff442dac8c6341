// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import (
	"fmt"
	"io"
)

// maxNameLen caps the name field of decoded headers. Unpacked entry paths
// cannot exceed the kernel's PATH_MAX.
const maxNameLen = 4096

// Reader reads entries from a newc archive in stream order.
type Reader struct {
	r io.Reader

	position  int64
	remaining int64
}

// NewReader creates a new archive reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next advances to the next entry and returns its header. Unread body bytes
// of the current entry are skipped. It returns [io.EOF] once the trailer
// entry is reached.
func (r *Reader) Next() (*Header, error) {
	if err := r.discard(r.remaining); err != nil {
		return nil, err
	}

	r.remaining = 0

	if err := r.align(); err != nil {
		return nil, err
	}

	raw := make([]byte, headerLen)

	n, err := io.ReadFull(r.r, raw)
	r.position += int64(n)

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	hdr, nameLen, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}

	// namesize comes straight from the stream, check it before allocating.
	// On 32 bit platforms the int conversion may have wrapped negative.
	if nameLen <= 0 || nameLen > maxNameLen {
		return nil, fmt.Errorf("%w: namesize %d", ErrHeader, nameLen)
	}

	name := make([]byte, nameLen)

	n, err = io.ReadFull(r.r, name)
	r.position += int64(n)

	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}

	if name[nameLen-1] != 0 {
		return nil, fmt.Errorf("%w: name not NUL terminated", ErrHeader)
	}

	hdr.Name = string(name[:nameLen-1])

	if err := r.align(); err != nil {
		return nil, err
	}

	if hdr.IsTrailer() {
		return nil, io.EOF
	}

	r.remaining = hdr.Size

	return hdr, nil
}

// Read reads the body of the current entry. It returns [io.EOF] once the
// body is exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}

	n, err := r.r.Read(p)
	r.position += int64(n)
	r.remaining -= int64(n)

	return n, err
}

func (r *Reader) align() error {
	return r.discard(padLen(r.position, 4))
}

func (r *Reader) discard(count int64) error {
	if count == 0 {
		return nil
	}

	n, err := io.CopyN(io.Discard, r.r, count)
	r.position += n

	if err != nil {
		return fmt.Errorf("discard: %w", err)
	}

	return nil
}
