// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package virtroot builds bootable initramfs images for kernels that get
// their real root filesystem from the host over a 9p virtio transport.
//
// An image contains a busybox binary providing the core utilities, device
// nodes for the early console, optional kernel modules, optional embedded
// data files and a generated init script. At boot the script loads the
// modules, mounts the real root, works around filesystem passthrough
// quirks, reads the real init program from the kernel command line and
// hands control over to it.
//
// Build the archive with [Build] or [BuildFile]:
//
//	busybox, err := virtroot.LocateBusybox()
//	if err != nil {
//		...
//	}
//
//	path, err := virtroot.BuildFile("", virtroot.Config{Busybox: busybox})
//
// Identical configuration and input files produce identical output bytes.
package virtroot
