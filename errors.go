// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import "errors"

var (
	// ErrNoBusybox is returned if the configuration has no busybox binary
	// set. The image does not work without its shell interpreter.
	ErrNoBusybox = errors.New("no busybox binary configured")

	// ErrRootModeInvalid is returned if a root mount mode is not known.
	ErrRootModeInvalid = errors.New("invalid root mount mode")

	// ErrCompressionInvalid is returned if a compression type is not known.
	ErrCompressionInvalid = errors.New("invalid compression type")

	// ErrDataNameInvalid is returned if a data file name is empty or
	// contains path separators or NUL bytes.
	ErrDataNameInvalid = errors.New("invalid data file name")
)
