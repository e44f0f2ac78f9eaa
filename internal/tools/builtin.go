// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// registerBuiltInTools registers the fixed tool set on the registry.
func registerBuiltInTools(r *Registry) {
	register := func(tool *Tool) {
		if err := r.RegisterTool(tool); err != nil {
			panic(err)
		}
	}

	register(&Tool{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Parameters:  mustSchemaParametersFor[readFileArgs](),
		Validate:    RequireStringArg("path", "missing or invalid 'path' parameter"),
		Execute:     r.readFile,
	})

	register(&Tool{
		Name:        "write_file",
		Description: "Write content to a file",
		Parameters:  mustSchemaParametersFor[writeFileArgs](),
		Validate: ChainValidation(
			RequireStringArg("path", "missing or invalid 'path' parameter"),
			func(args map[string]interface{}) error {
				if _, ok := args["content"].(string); !ok {
					return fmt.Errorf("missing or invalid 'content' parameter")
				}
				return nil
			},
		),
		Execute: r.writeFile,
	})

	register(&Tool{
		Name:        "list_directory",
		Description: "List files and directories in a path",
		Parameters:  mustSchemaParametersFor[listDirectoryArgs](),
		Validate:    OptionalStringArg("path", "invalid 'path' parameter"),
		Execute:     r.listDirectory,
	})

	register(&Tool{
		Name:        "run_command",
		Description: "Execute a shell command inside the workspace",
		Parameters:  mustSchemaParametersFor[runCommandArgs](),
		Validate: ChainValidation(
			RequireStringArg("command", "missing or invalid 'command' parameter"),
			OptionalStringArg("cwd", "invalid 'cwd' parameter"),
		),
		Execute: r.runCommand,
	})

	register(&Tool{
		Name:        "search_files",
		Description: "Search for text patterns in files",
		Parameters:  mustSchemaParametersFor[searchFilesArgs](),
		Validate: ChainValidation(
			RequireStringArg("pattern", "missing or invalid 'pattern' parameter"),
			OptionalStringArg("directory", "invalid 'directory' parameter"),
		),
		Execute: r.searchFiles,
	})
}

func (r *Registry) readFile(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	var req readFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	resolved := r.ws.Resolve(req.Path)
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}
	if info.Size() > r.limits.MaxFileSizeBytes {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", r.limits.MaxFileSizeBytes)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}
	if !isTextContent(content) {
		return "", fmt.Errorf("file appears to be binary; read_file supports text only")
	}

	return string(content), nil
}

func (r *Registry) writeFile(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	var req writeFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	if int64(len(req.Content)) > r.limits.MaxFileSizeBytes {
		return "", fmt.Errorf("content exceeds maximum size of %d bytes", r.limits.MaxFileSizeBytes)
	}

	resolved := r.ws.Resolve(req.Path)
	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return "", fmt.Errorf("path '%s' is a directory", resolved)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %v", err)
	}
	if err := os.WriteFile(resolved, []byte(req.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(req.Content), resolved), nil
}

func (r *Registry) listDirectory(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	var req listDirectoryArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	resolved := r.ws.Resolve(req.Path)
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to list directory: %v", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("'%s' is not a directory", resolved)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to list directory: %v", err)
	}
	if len(entries) == 0 {
		return "Directory is empty", nil
	}

	// os.ReadDir returns entries sorted by name.
	var lines []string
	for _, entry := range entries {
		if entry.IsDir() {
			lines = append(lines, fmt.Sprintf("[DIR]  %s/", entry.Name()))
			continue
		}
		size := int64(0)
		if fi, err := entry.Info(); err == nil {
			size = fi.Size()
		}
		lines = append(lines, fmt.Sprintf("[FILE] %s (%d bytes)", entry.Name(), size))
	}

	return strings.Join(lines, "\n"), nil
}

// isTextContent reports whether data looks like decodable text. Used
// to keep binary files out of read_file and search_files results.
func isTextContent(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !utf8.Valid(data) {
		return false
	}

	const sampleSize = 8192
	limit := len(data)
	if limit > sampleSize {
		limit = sampleSize
	}

	var nonPrintable int
	for _, b := range data[:limit] {
		switch b {
		case '\n', '\r', '\t':
			continue
		}
		if b == 0 {
			return false
		}
		if b < 0x20 || b == 0x7f {
			nonPrintable++
		}
	}

	return nonPrintable*20 < limit
}
