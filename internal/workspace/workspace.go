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

// Package workspace confines all tool filesystem access to a single
// root directory. Paths that resolve outside the root are retargeted
// to a same-named entry inside it instead of being rejected, so a tool
// call can never escape the workspace and never fails on containment.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "agentline/internal/errors"
)

// Workspace is the canonical root directory for all sandboxed
// operations. Immutable for the process lifetime and safe to share
// across concurrent requests.
type Workspace struct {
	root string
}

// New creates the workspace directory if it is missing and
// canonicalizes its path (absolute, symlinks resolved).
func New(path string) (*Workspace, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.New(apperrors.CodeWorkspace, "workspace path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeWorkspace, "invalid workspace path", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeWorkspace, "failed to create workspace directory", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeWorkspace, "failed to resolve workspace directory", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the canonical workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve canonicalizes a requested path and guarantees the result is
// inside the workspace. Relative paths are joined to the root; a path
// that resolves outside the root (absolute, dot-dot or symlink escape)
// falls back to root/basename. Resolve never fails.
func (w *Workspace) Resolve(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "." {
		return w.root
	}

	candidate := trimmed
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(w.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveExisting(candidate)
	if err != nil {
		resolved = candidate
	}

	if hasPathPrefix(resolved, w.root) {
		return resolved
	}

	// Retarget to root/basename. A basename with no name component
	// (pure dot-dot or a bare separator) collapses to the root itself.
	base := filepath.Base(filepath.Clean(trimmed))
	if base == ".." || base == "." || base == string(os.PathSeparator) {
		return w.root
	}
	return filepath.Join(w.root, base)
}

// Rel reports a resolved path relative to the root, for display.
func (w *Workspace) Rel(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return abs
	}
	return rel
}

// resolveExisting resolves symlinks along the deepest existing prefix
// of path, so a not-yet-created file under a symlinked parent still
// canonicalizes correctly.
func resolveExisting(path string) (string, error) {
	if _, err := os.Lstat(path); err == nil {
		return filepath.EvalSymlinks(path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat path: %v", err)
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path, nil
	}
	parentResolved, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(parentResolved, filepath.Base(path)), nil
}

// hasPathPrefix returns true when path is within base.
func hasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}
