// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtroot

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/aibor/virtroot/cpio"
	"github.com/aibor/virtroot/internal/sys"
	"golang.org/x/sync/errgroup"
)

// archiveWriter is the part of [cpio.Writer] the image assembly uses.
type archiveWriter interface {
	WriteDirectory(path string) error
	WriteLink(path, target string) error
	WriteRegular(path string, source fs.File, perm cpio.FileMode) error
	WriteBytes(path string, data []byte, perm cpio.FileMode) error
	WriteCharDevice(path string, perm cpio.FileMode, major, minor int) error
}

// LocateBusybox searches the usual binary directories of the host for an
// executable busybox binary and returns its path.
func LocateBusybox() (string, error) {
	return sys.LocateBusybox("/")
}

// Build writes the complete initramfs image for cfg to w.
//
// All input files are checked before the first byte is written, so a
// failed build due to bad inputs leaves w untouched. The archive layout
// depends only on the configuration and the input file contents, so the
// same inputs produce identical bytes.
func Build(w io.Writer, cfg Config) error {
	err := cfg.validate()
	if err != nil {
		return err
	}

	err = checkInputs(cfg)
	if err != nil {
		return err
	}

	sink, err := cfg.Compression.newWriter(w)
	if err != nil {
		return err
	}

	archive := cpio.NewWriter(sink)

	err = writeImage(archive, cfg)
	if err != nil {
		_ = sink.Close()
		return err
	}

	err = archive.Close()
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("close archive: %w", err)
	}

	err = sink.Close()
	if err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}

	return nil
}

// BuildFile writes the image for cfg into a new temporary file in dir.
//
// It returns the path to the created file. If dir is the empty string the
// default directory is used as returned by [os.TempDir].
//
// The caller is responsible for removing the file once it is not needed
// anymore.
func BuildFile(dir string, cfg Config) (string, error) {
	file, err := os.CreateTemp(dir, "initramfs")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	err = Build(file, cfg)
	if err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("create archive: %w", err)
	}

	slog.Debug("Initramfs created", slog.String("path", file.Name()))

	return file.Name(), nil
}

// checkInputs stats all configured input files. The checks only read
// metadata and run concurrently. A busybox binary that is not a static
// ELF executable is reported but not rejected, since the check cannot
// tell if the binary would actually fail in the guest.
func checkInputs(cfg Config) error {
	eg := errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))

	eg.Go(func() error {
		err := checkRegular(cfg.Busybox)
		if err != nil {
			return fmt.Errorf("busybox: %w", err)
		}

		err = sys.EnsureStaticELF(cfg.Busybox)
		if err != nil {
			slog.Warn("Busybox binary may not work as initramfs shell",
				slog.String("path", cfg.Busybox),
				slog.String("error", err.Error()))
		}

		return nil
	})

	for _, module := range cfg.Modules {
		eg.Go(func() error {
			err := checkRegular(module)
			if err != nil {
				return fmt.Errorf("module: %w", err)
			}

			return nil
		})
	}

	return eg.Wait()
}

func checkRegular(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", name, cpio.ErrNotRegularFile)
	}

	return nil
}

// writeImage writes all archive entries in their canonical order. The
// generated init program is always the last entry.
func writeImage(w archiveWriter, cfg Config) error {
	err := writeBaseLayout(w)
	if err != nil {
		return err
	}

	err = writeDeviceNodes(w)
	if err != nil {
		return err
	}

	err = writeBusybox(w, cfg.Busybox)
	if err != nil {
		return err
	}

	err = w.WriteBytes(modprobePath, []byte(modprobeScript), 0o755)
	if err != nil {
		return err
	}

	err = writeModules(w, cfg.Modules)
	if err != nil {
		return err
	}

	err = writeData(w, cfg.Data)
	if err != nil {
		return err
	}

	return w.WriteBytes(initPath, initScript(cfg.Root), 0o755)
}

func writeBaseLayout(w archiveWriter) error {
	for _, dir := range baseDirs {
		err := w.WriteDirectory(dir)
		if err != nil {
			return err
		}
	}

	for _, link := range baseLinks {
		err := w.WriteLink(link.path, link.target)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeDeviceNodes(w archiveWriter) error {
	for _, dev := range charDevices {
		err := w.WriteCharDevice(dev.path, dev.perm, dev.major, dev.minor)
		if err != nil {
			return err
		}
	}

	return nil
}

// writeBusybox embeds the busybox binary, links the applets the generated
// scripts use and creates the directory reserved for wrapped programs.
func writeBusybox(w archiveWriter, busybox string) error {
	err := embedFile(w, busyboxPath, busybox, 0o755)
	if err != nil {
		return fmt.Errorf("busybox: %w", err)
	}

	for _, applet := range applets {
		err := w.WriteLink(path.Join(binDir, applet), "busybox")
		if err != nil {
			return err
		}
	}

	return w.WriteDirectory(realProgsDir)
}

// writeModules embeds the kernel module files under their base names and
// generates the loader script. The loader preserves the configured order.
func writeModules(w archiveWriter, modules []string) error {
	if len(modules) == 0 {
		return nil
	}

	err := w.WriteDirectory(modulesDir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(modules))

	for _, module := range modules {
		name := filepath.Base(module)

		err := embedFile(w, path.Join(modulesDir, name), module, 0o644)
		if err != nil {
			return fmt.Errorf("module: %w", err)
		}

		names = append(names, name)
	}

	return w.WriteBytes(loaderPath, loaderScript(names), 0o755)
}

// writeData embeds the runtime data files in sorted name order so the
// archive does not depend on map iteration order.
func writeData(w archiveWriter, data map[string][]byte) error {
	for _, name := range slices.Sorted(maps.Keys(data)) {
		err := w.WriteBytes(path.Join(dataDir, name), data[name], 0o755)
		if err != nil {
			return err
		}
	}

	return nil
}

func embedFile(w archiveWriter, name, source string, perm cpio.FileMode) error {
	file, err := os.Open(source)
	if err != nil {
		return err
	}
	defer file.Close()

	return w.WriteRegular(name, file, perm)
}
