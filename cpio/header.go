// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// magicNewc identifies the portable SVR4 format with an unused check field.
const magicNewc = "070701"

// TrailerName is the reserved name of the end-of-archive entry.
const TrailerName = "TRAILER!!!"

const (
	// headerLen is the fixed length of an entry header: the magic followed
	// by 13 fields of 8 hex digits each.
	headerLen = 110

	// blockSize is the alignment of the complete archive stream. The kernel
	// reads initramfs data in blocks of this size.
	blockSize = 512

	fieldLen  = 8
	numFields = 13
)

var _ [headerLen]byte = [len(magicNewc) + numFields*fieldLen]byte{}

// Header describes a single archive entry.
//
// Some zero fields mean "let the [Writer] choose": a zero Inode is replaced
// with the next free number from the writer's counter and a zero Links
// count becomes 2 for directories and 1 for anything else. A zero ModTime
// is written as the epoch, which keeps archive output reproducible.
type Header struct {
	Name      string
	Inode     int64
	Mode      FileMode
	UID       int
	GID       int
	Links     int
	ModTime   time.Time
	Size      int64
	DevMajor  int
	DevMinor  int
	RDevMajor int
	RDevMinor int
}

// IsTrailer reports whether the header describes the end-of-archive entry.
func (h *Header) IsTrailer() bool { return h.Name == TrailerName }

func (h *Header) mtime() int64 {
	if h.ModTime.IsZero() {
		return 0
	}

	sec := h.ModTime.Unix()
	if sec < 0 {
		return 0
	}

	return sec
}

// validate checks that the header can be represented on the wire. The name
// must be free of NUL bytes since it is NUL terminated in the archive, and
// every numeric field must fit its 8 hex digit encoding.
func (h *Header) validate() error {
	if strings.IndexByte(h.Name, 0) != -1 {
		return fmt.Errorf("%w: %q", ErrInvalidName, h.Name)
	}

	fields := []struct {
		name  string
		value int64
	}{
		{"inode", h.Inode},
		{"uid", int64(h.UID)},
		{"gid", int64(h.GID)},
		{"nlink", int64(h.Links)},
		{"mtime", h.mtime()},
		{"filesize", h.Size},
		{"devmajor", int64(h.DevMajor)},
		{"devminor", int64(h.DevMinor)},
		{"rdevmajor", int64(h.RDevMajor)},
		{"rdevminor", int64(h.RDevMinor)},
		{"namesize", int64(len(h.Name)) + 1},
	}

	for _, field := range fields {
		if field.value < 0 || field.value > math.MaxUint32 {
			return fmt.Errorf("%w: %s %d", ErrFieldOverflow, field.name, field.value)
		}
	}

	return nil
}

// encode renders the fixed-width part of the entry header. All fields are
// zero-padded uppercase hexadecimal. The caller must have validated the
// header, out-of-range values are truncated here.
func (h *Header) encode() []byte {
	fields := [numFields]uint32{
		uint32(h.Inode),
		uint32(h.Mode),
		uint32(h.UID),
		uint32(h.GID),
		uint32(h.Links),
		uint32(h.mtime()),
		uint32(h.Size),
		uint32(h.DevMajor),
		uint32(h.DevMinor),
		uint32(h.RDevMajor),
		uint32(h.RDevMinor),
		uint32(len(h.Name) + 1),
		0, // check field, unused with magic 070701
	}

	buf := make([]byte, 0, headerLen)
	buf = append(buf, magicNewc...)

	for _, field := range fields {
		buf = fmt.Appendf(buf, "%08X", field)
	}

	return buf
}

// decodeHeader parses the fixed-width part of an entry header. It returns
// the header without name and the length of the following name field,
// including the terminating NUL byte.
func decodeHeader(raw []byte) (*Header, int, error) {
	if string(raw[:len(magicNewc)]) != magicNewc {
		return nil, 0, fmt.Errorf("%w: magic %q", ErrHeader, raw[:len(magicNewc)])
	}

	var fields [numFields]uint32

	for idx := range fields {
		offset := len(magicNewc) + idx*fieldLen
		field := string(raw[offset : offset+fieldLen])

		value, err := strconv.ParseUint(field, 16, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: field %d: %w", ErrHeader, idx, err)
		}

		fields[idx] = uint32(value)
	}

	hdr := &Header{
		Inode:     int64(fields[0]),
		Mode:      FileMode(fields[1]),
		UID:       int(fields[2]),
		GID:       int(fields[3]),
		Links:     int(fields[4]),
		ModTime:   time.Unix(int64(fields[5]), 0),
		Size:      int64(fields[6]),
		DevMajor:  int(fields[7]),
		DevMinor:  int(fields[8]),
		RDevMajor: int(fields[9]),
		RDevMinor: int(fields[10]),
	}

	return hdr, int(fields[11]), nil
}

// padLen returns the number of zero bytes needed to grow position to a
// multiple of alignTo.
func padLen(position, alignTo int64) int64 {
	if rem := position % alignTo; rem != 0 {
		return alignTo - rem
	}

	return 0
}
