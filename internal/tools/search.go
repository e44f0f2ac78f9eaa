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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// searchFiles walks a directory tree and reports case-insensitive
// substring matches, one line per hit, formatted
// relativePath:lineNumber: content. Binary files are skipped by
// policy: this tool is for source search, not binary inspection.
func (r *Registry) searchFiles(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	var req searchFilesArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	root := r.ws.Resolve(req.Directory)
	if _, err := os.Stat(root); err != nil {
		return "", fmt.Errorf("directory %s does not exist", root)
	}

	needle := strings.ToLower(req.Pattern)
	var matches []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ensureContext(ctx); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > r.limits.MaxFileSizeBytes {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil || !isTextContent(data) {
			return nil
		}

		for i, line := range strings.Split(string(data), "\n") {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			matches = append(matches, fmt.Sprintf("%s:%d: %s", r.ws.Rel(path), i+1, strings.TrimSpace(line)))
			if len(matches) >= r.limits.MaxSearchMatches {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error searching files: %v", err)
	}

	if len(matches) == 0 {
		return "No matches found", nil
	}
	return strings.Join(matches, "\n"), nil
}
