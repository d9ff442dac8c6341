// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cpio implements the newc (SVR4) archive format consumed by the
// Linux kernel's initramfs unpacker. Unlike general purpose cpio libraries
// the writer gives full control over every header field, writes character
// device nodes and pads the finished stream to the 512 byte block boundary
// the kernel loader expects, so identical input produces identical bytes.
package cpio
