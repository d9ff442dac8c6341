// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import (
	"fmt"
	"strings"
)

// logFunc is the shell logging helper shared by all generated scripts, so
// boot messages have a single format. It writes to the console device,
// which is synchronous and works before any real filesystem is up.
const logFunc = `log() {
    echo "virtroot: $*" >/dev/console
}
`

// modprobeScript is installed at bin/modprobe unconditionally and is
// reachable as /sbin/modprobe through the sbin link. The kernel invokes it
// as "modprobe -q -- <name>" whenever code requests a module. The image
// carries no module metadata for dependency resolution, so every request
// fails with a message on the console.
const modprobeScript = `#!/bin/sh
echo "virtroot: kernel module ${3:-$1} is not available in this image" >/dev/console
exit 1
`

// loaderScript generates the script that loads the named kernel modules
// from lib/modules in the given order. The init script sources it before
// anything else, so a failed load stops the boot.
func loaderScript(names []string) []byte {
	var script strings.Builder

	script.WriteString("#!/bin/sh\n")
	script.WriteString(logFunc)

	for _, name := range names {
		fmt.Fprintf(&script, `log "loading kernel module %[1]s"
/bin/busybox insmod "/lib/modules/%[1]s" || {
    log "failed to load %[1]s, cannot continue"
    exit 1
}
`, name)
	}

	return []byte(script.String())
}

// initStep is one named stage of the init script. The script is the
// concatenation of all steps in order; each step either succeeds or stops
// the boot with a message on the console.
type initStep struct {
	name string
	text string
}

// initSteps returns the stages of the init script in execution order.
func initSteps(mode RootMode) []initStep {
	return []initStep{
		{name: "load modules", text: loadModulesStep},
		{name: "mount real root", text: fmt.Sprintf(mountRootStep, mode.flag())},
		{name: "rebuild unmountable root", text: rebuildRootStep},
		{name: "populate runtime dir", text: runtimeDirStep},
		{name: "find real init", text: findInitStep},
		{name: "mount guest tools", text: guestToolsStep},
		{name: "hand off", text: handOffStep},
	}
}

// initScript renders the init program of the image, which runs as PID 1
// once the kernel has unpacked the archive.
func initScript(mode RootMode) []byte {
	var script strings.Builder

	script.WriteString("#!/bin/sh\n")
	script.WriteString(logFunc)

	for _, step := range initSteps(mode) {
		script.WriteString("\n")
		script.WriteString(step.text)
	}

	return []byte(script.String())
}

// loadModulesStep runs the module loader if one is embedded. It is sourced
// so its exit on a failed load terminates the init script as well.
const loadModulesStep = `if [ -e /modules.sh ]; then
    . /modules.sh
fi
`

// mountRootStep mounts the real root filesystem from the 9p transport
// tagged /dev/root. It takes the ro/rw mount flag. Without the real root
// nothing else can work, so a failed mount stops the boot; the sleep keeps
// the message readable on a synchronous console before the kernel panics.
const mountRootStep = `log "mounting real root at /newroot"
if ! /bin/mount -t 9p -o version=9p2000.L,trans=virtio,access=any,%s /dev/root /newroot; then
    log "failed to mount real root, cannot continue"
    /bin/sleep 2
    exit 1
fi
`

// rebuildRootStep probes whether mounting inside the new root works. Some
// passthrough filesystem servers refuse mounts below the export. In that
// case the mounted root is moved aside and rebuilt on a tmpfs: mount point
// directories are recreated empty, everything else is bind mounted from
// the moved tree.
const rebuildRootStep = `if /bin/mount -t proc -o nosuid,noexec,nodev proc /newroot/proc 2>/dev/null; then
    /bin/umount /newroot/proc
else
    log "cannot mount inside the real root, rebuilding it from bind mounts"
    /bin/mount --move /newroot /tmproot
    /bin/mount -t tmpfs none /newroot
    for entry in /tmproot/*; do
        [ -e "$entry" ] || continue
        name="${entry#/tmproot/}"
        case "$name" in
        proc|sys|dev|run|tmp)
            /bin/mkdir "/newroot/$name"
            ;;
        *)
            if [ -d "$entry" ]; then
                /bin/mkdir "/newroot/$name"
            else
                : > "/newroot/$name"
            fi
            /bin/mount --bind "$entry" "/newroot/$name"
            ;;
        esac
    done
    /bin/mknod /newroot/dev/null c 1 3
    /bin/mount -o remount,ro /newroot
    /bin/umount -l /tmproot
fi
`

// runtimeDirStep mounts a fresh tmpfs for runtime state, copies the
// embedded runtime data into it and leaves a marker for the booted system.
const runtimeDirStep = `/bin/mount -t tmpfs tmpfs /newroot/run
/bin/cp -a /run/virtroot /newroot/run/virtroot
echo ok > /newroot/run/virtroot/root_mounted
`

// findInitStep reads the init= option from the kernel command line. The
// image does not guess an init program on its own.
const findInitStep = `/bin/mount -t proc proc /proc
init=
for arg in $(/bin/cat /proc/cmdline); do
    case "$arg" in
    init=*)
        init="${arg#init=}"
        ;;
    esac
done
/bin/umount /proc
if [ -z "$init" ]; then
    log "no init= option on the kernel command line, cannot continue"
    exit 1
fi
`

// guestToolsStep mounts the second 9p transport carrying guest side
// tooling. The transport is optional, the tooling may already be embedded.
const guestToolsStep = `if ! /bin/mount -t 9p -o version=9p2000.L,trans=virtio,access=any virtroot.guesttools /newroot/run/virtroot/guesttools 2>/dev/null; then
    log "no guest tools filesystem, continuing without it"
fi
`

// handOffStep replaces the init script with the real init program. The
// boot arguments are passed through unchanged. It does not return.
const handOffStep = `log "switching root, booting $init"
exec /bin/switch_root /newroot "$init" "$@"
`
