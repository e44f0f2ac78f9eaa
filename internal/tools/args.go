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
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Typed argument structs for the built-in tools. The jsonschema tags
// feed the parameter schemas advertised to the model; omitempty marks
// a field optional.

type readFileArgs struct {
	Path string `json:"path" jsonschema:"description=Path to the file to read"`
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"description=Path to the file to write"`
	Content string `json:"content" jsonschema:"description=Content to write to the file"`
}

type listDirectoryArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Path to the directory to list (default: workspace root)"`
}

type runCommandArgs struct {
	Command string `json:"command" jsonschema:"description=Shell command to execute"`
	Cwd     string `json:"cwd,omitempty" jsonschema:"description=Working directory for the command (optional)"`
}

type searchFilesArgs struct {
	Pattern   string `json:"pattern" jsonschema:"description=Text pattern to search for (case-insensitive substring)"`
	Directory string `json:"directory,omitempty" jsonschema:"description=Directory to search in (default: workspace root)"`
}

// decodeArgs maps the model's loosely-typed key/value arguments onto a
// typed request struct, reusing the json tags for field names.
func decodeArgs(args map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("failed to build argument decoder: %v", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}
