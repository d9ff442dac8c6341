// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import "fmt"

const (
	// TypeMask selects the file type bits of a [FileMode].
	TypeMask FileMode = 0o170000

	TypeSocket  FileMode = 0o140000
	TypeSymlink FileMode = 0o120000
	TypeReg     FileMode = 0o100000
	TypeBlock   FileMode = 0o060000
	TypeDir     FileMode = 0o040000
	TypeChar    FileMode = 0o020000
	TypeFIFO    FileMode = 0o010000

	// ModePerm selects the Unix permission bits of a [FileMode].
	ModePerm FileMode = 0o777
)

// FileMode describes type and permissions of an archive entry, in the
// encoding the kernel expects in the c_mode header field.
type FileMode uint32

// Type returns the file type bits.
func (m FileMode) Type() FileMode { return m & TypeMask }

// Perm returns the Unix permission bits.
func (m FileMode) Perm() FileMode { return m & ModePerm }

// IsDir reports whether the mode describes a directory.
func (m FileMode) IsDir() bool { return m.Type() == TypeDir }

// IsRegular reports whether the mode describes a regular file.
func (m FileMode) IsRegular() bool { return m.Type() == TypeReg }

// IsSymlink reports whether the mode describes a symbolic link.
func (m FileMode) IsSymlink() bool { return m.Type() == TypeSymlink }

// IsCharDevice reports whether the mode describes a character device node.
func (m FileMode) IsCharDevice() bool { return m.Type() == TypeChar }

// String implements [fmt.Stringer].
func (m FileMode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}
