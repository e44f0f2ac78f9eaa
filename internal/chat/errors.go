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

package chat

import "fmt"

// APIError represents an error from the model API.
type APIError struct {
	Operation string
	Err       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error during %s: %v", e.Operation, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// OracleError represents a failure while consulting the oracle model.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("Oracle error: %v", e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// ToolRoundsExceededError signals that a single request kept producing
// tool calls past the configured round limit.
type ToolRoundsExceededError struct {
	Rounds int
}

func (e *ToolRoundsExceededError) Error() string {
	return fmt.Sprintf("request exceeded %d tool-calling rounds without a final answer", e.Rounds)
}
