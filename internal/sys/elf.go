// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"fmt"
)

// EnsureStaticELF checks that the file is a statically linked ELF binary
// for Linux. The image contains neither a dynamic loader nor libraries, so
// a dynamically linked binary would fail at boot time.
func EnsureStaticELF(path string) error {
	file, err := elf.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	switch file.OSABI {
	case elf.ELFOSABI_NONE, elf.ELFOSABI_LINUX:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrOSABINotSupported, file.OSABI)
	}

	for _, prog := range file.Progs {
		switch prog.Type {
		case elf.PT_INTERP, elf.PT_DYNAMIC:
			return fmt.Errorf("%w: has %s segment", ErrNotStatic, prog.Type)
		}
	}

	return nil
}
