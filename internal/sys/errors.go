// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrBusyboxNotFound is returned if no executable busybox binary is
	// found in any of the searched directories.
	ErrBusyboxNotFound = errors.New("no busybox binary found")

	// ErrOSABINotSupported is returned if an ELF file is not built for
	// Linux.
	ErrOSABINotSupported = errors.New("OSABI not supported")

	// ErrNotStatic is returned if an ELF file is dynamically linked.
	ErrNotStatic = errors.New("not a statically linked binary")
)
