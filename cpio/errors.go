// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cpio

import "errors"

var (
	// ErrInvalidName is returned if an entry name contains a NUL byte. The
	// name field is NUL terminated on the wire, so such a name cannot be
	// represented.
	ErrInvalidName = errors.New("entry name contains NUL byte")

	// ErrFieldOverflow is returned if a numeric header field does not fit
	// the 8 hex digit wire encoding.
	ErrFieldOverflow = errors.New("header field exceeds 32 bits")

	// ErrWriteAfterClose is returned if the [Writer] is used after Close.
	ErrWriteAfterClose = errors.New("write after close")

	// ErrNotRegularFile is returned if a source file is not a regular file.
	ErrNotRegularFile = errors.New("source is not a regular file")

	// ErrShortBody is returned if a body reader yields fewer bytes than
	// announced in the header's size field.
	ErrShortBody = errors.New("body shorter than header size field")

	// ErrHeader is returned if archive data does not parse as a newc entry
	// header.
	ErrHeader = errors.New("invalid newc header")
)
