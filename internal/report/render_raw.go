package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// RawExtension is the file extension of saved sadf output.
const RawExtension = ".raw"

// RawInput is the saved output of one sadf run.
type RawInput struct {
	Path   string
	Output []byte
}

// ReadRawInputs reads saved sadf output from the specified path.
// If the path is a directory, it reads all .raw files in it, in name order.
// If the path is a file, it reads that file.
func ReadRawInputs(path string) (inputs []RawInput, err error) {
	// path may be a directory or a file
	fileInfo, err := os.Stat(path)
	if err != nil {
		err = fmt.Errorf("failed to get file info: %v", err)
		return
	}
	allRawPaths := []string{}
	if fileInfo.IsDir() {
		var files []os.DirEntry
		files, err = os.ReadDir(path)
		if err != nil {
			err = fmt.Errorf("failed to read raw input directory: %v", err)
			return
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if strings.HasSuffix(file.Name(), RawExtension) {
				allRawPaths = append(allRawPaths, filepath.Join(path, file.Name()))
			}
		}
		slices.Sort(allRawPaths)
		if len(allRawPaths) == 0 {
			err = fmt.Errorf("no %s files found in %s", RawExtension, path)
			return
		}
	} else {
		allRawPaths = append(allRawPaths, path)
	}
	for _, rawPath := range allRawPaths {
		var input RawInput
		input, err = readRawInput(rawPath)
		if err != nil {
			return
		}
		inputs = append(inputs, input)
	}
	return
}

func readRawInput(rawPath string) (input RawInput, err error) {
	output, err := os.ReadFile(rawPath) // #nosec G304
	if err != nil {
		err = fmt.Errorf("failed to read raw input file (%s): %v", rawPath, err)
		return
	}
	if !json.Valid(output) {
		err = fmt.Errorf("raw input file (%s) is not valid JSON", rawPath)
		return
	}
	input = RawInput{Path: rawPath, Output: output}
	return
}
