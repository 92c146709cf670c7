/*
Package util includes utility/helper functions that may be useful to other modules.
*/
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// ExpandUser expands '~' to user's home directory, if found, otherwise returns original path
func ExpandUser(path string) string {
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	} else if strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}

// AbsPath returns absolute path after expanding '~' to user's home dir
// Use everywhere in place of filepath.Abs()
func AbsPath(path string) (string, error) {
	return filepath.Abs(ExpandUser(path))
}

// FileExists checks if a regular file exists at the given path.
func FileExists(path string) (exists bool, err error) {
	return pathExists(path, func(fi fs.FileInfo) bool { return fi.Mode().IsRegular() }, "not a regular file")
}

// DirectoryExists checks if a directory exists at the given path.
func DirectoryExists(path string) (exists bool, err error) {
	return pathExists(path, fs.FileInfo.IsDir, "not a directory")
}

func pathExists(path string, want func(fs.FileInfo) bool, notWantMsg string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !want(fileInfo) {
		return false, &fs.PathError{Op: "stat", Path: path, Err: errNotWanted(notWantMsg)}
	}
	return true, nil
}

type errNotWanted string

func (e errNotWanted) Error() string { return string(e) }

// UniqueAppend appends an item to a slice if it is not already present
func UniqueAppend[T comparable](slice []T, item T) []T {
	if slices.Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFileName replaces characters that are unsafe in file names, e.g., a host
// name used as the base of report file names. Returns fallback if nothing is left.
func SanitizeFileName(name string, fallback string) string {
	name = strings.Trim(unsafeFileNameChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return fallback
	}
	return name
}

// FileNameWithoutExt returns the base name of path without its extension.
func FileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
