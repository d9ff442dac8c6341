// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// busyboxDirs are the usual install locations of the busybox binary,
// relative to the searched root.
var busyboxDirs = []string{
	"bin",
	"sbin",
	"usr/bin",
	"usr/sbin",
	"usr/local/bin",
}

// LocateBusybox searches the conventional binary directories beneath root
// for an executable busybox binary and returns the first match.
func LocateBusybox(root string) (string, error) {
	for _, dir := range busyboxDirs {
		path := filepath.Join(root, dir, "busybox")

		err := unix.Access(path, unix.X_OK)
		if err != nil {
			continue
		}

		return path, nil
	}

	return "", fmt.Errorf("%w in %s", ErrBusyboxNotFound, root)
}
