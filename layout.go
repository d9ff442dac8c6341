// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import "github.com/aibor/virtroot/cpio"

// Archive layout. All paths are relative, the kernel unpacks them under /.
const (
	binDir        = "bin"
	rootMountDir  = "newroot"
	scratchDir    = "tmproot"
	runStateDir   = "run/virtroot"
	dataDir       = "run/virtroot/data"
	guestToolsDir = "run/virtroot/guesttools"

	busyboxPath  = "bin/busybox"
	realProgsDir = "bin/real_progs"
	modprobePath = "bin/modprobe"
	modulesDir   = "lib/modules"
	loaderPath   = "modules.sh"
	initPath     = "init"
)

// baseDirs is written first, in this exact order. The scratch directory is
// where the init script moves the real root while rebuilding it, see
// rebuildRootStep.
var baseDirs = []string{
	"lib",
	binDir,
	"var",
	"etc",
	rootMountDir,
	"dev",
	"proc",
	scratchDir,
	"run",
	runStateDir,
	dataDir,
	guestToolsDir,
}

var baseLinks = []struct {
	path   string
	target string
}{
	{"lib64", "lib"},
	{"sbin", binDir},
}

// charDevices are the device nodes needed before the real /dev is up: the
// console for boot messages, the kernel log and the null device.
var charDevices = []struct {
	path  string
	perm  cpio.FileMode
	major int
	minor int
}{
	{"dev/null", 0o666, 1, 3},
	{"dev/kmsg", 0o666, 1, 11},
	{"dev/console", 0o660, 5, 1},
}

// applets are the busybox commands linked into bin. The generated scripts
// get by with these; anything else goes through the busybox binary itself.
var applets = []string{
	"sh",
	"mount",
	"umount",
	"switch_root",
	"sleep",
	"mkdir",
	"mknod",
	"cp",
	"cat",
}
