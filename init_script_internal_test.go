// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSteps(t *testing.T) {
	expected := []string{
		"load modules",
		"mount real root",
		"rebuild unmountable root",
		"populate runtime dir",
		"find real init",
		"mount guest tools",
		"hand off",
	}

	steps := initSteps(RootModeReadOnly)

	names := make([]string, len(steps))
	for idx, step := range steps {
		names[idx] = step.name
	}

	assert.Equal(t, expected, names)
}

func TestInitScript(t *testing.T) {
	script := string(initScript(RootModeReadOnly))

	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	assert.Contains(t, script, logFunc)

	lastIdx := -1

	for _, step := range initSteps(RootModeReadOnly) {
		idx := strings.Index(script, step.text)
		require.NotEqual(t, -1, idx, "step %s is part of the script", step.name)

		assert.Greater(t, idx, lastIdx, "step %s keeps its position", step.name)

		lastIdx = idx
	}
}

func TestInitScriptRootMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     RootMode
		expected string
	}{
		{
			name:     "read only",
			mode:     RootModeReadOnly,
			expected: "access=any,ro /dev/root /newroot",
		},
		{
			name:     "read write",
			mode:     RootModeReadWrite,
			expected: "access=any,rw /dev/root /newroot",
		},
		{
			name:     "zero value mounts read only",
			mode:     RootMode(""),
			expected: "access=any,ro /dev/root /newroot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := string(initScript(tt.mode))

			assert.Contains(t, script, tt.expected)
		})
	}
}

func TestLoaderScript(t *testing.T) {
	loader := string(loaderScript([]string{"virtio_pci.ko", "9pnet_virtio.ko"}))

	assert.True(t, strings.HasPrefix(loader, "#!/bin/sh\n"))
	assert.Contains(t, loader, logFunc)

	first := strings.Index(loader, `/bin/busybox insmod "/lib/modules/virtio_pci.ko"`)
	second := strings.Index(loader, `/bin/busybox insmod "/lib/modules/9pnet_virtio.ko"`)

	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "load order follows the argument order")

	logIdx := strings.Index(loader, `log "loading kernel module virtio_pci.ko"`)
	require.NotEqual(t, -1, logIdx)
	assert.Less(t, logIdx, first, "log line precedes the load")

	assert.Contains(t, loader, "exit 1")
}

func TestModprobeScript(t *testing.T) {
	assert.True(t, strings.HasPrefix(modprobeScript, "#!/bin/sh\n"))
	assert.Contains(t, modprobeScript, "${3:-$1}")
	assert.Contains(t, modprobeScript, "exit 1")
}
