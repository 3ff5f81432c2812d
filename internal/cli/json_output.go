// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// JSONResponse is the envelope every command prints in --json mode.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to w as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// OutputJSON runs handler and, in JSON mode, wraps its result or error in a
// JSONResponse on w. Outside JSON mode the handler prints for itself.
func OutputJSON(w io.Writer, jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if !jsonMode {
		return err
	}
	if err != nil {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return err
	}
	return NewJSONResponse(command, data).Print(w)
}

// =============================================================================
// STATUS LINES
// =============================================================================

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	errLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText   = color.New(color.Faint).SprintFunc()
)

// printOK prints a success status line.
func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", okLabel("[OK]"), fmt.Sprintf(format, args...))
}

// printWarn prints a warning status line.
func printWarn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warnLabel("[!]"), fmt.Sprintf(format, args...))
}

// printErr prints an error status line.
func printErr(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", errLabel("[X]"), fmt.Sprintf(format, args...))
}
