// Package server implements the MCP (Model Context Protocol) server for the
// color picker.
//
// The server owns one picker session and exposes its canvas, pointer events
// and selection toggle as MCP tools, so a client can drive the picker the
// way a user would drive it with a mouse.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image:
//   - picker_load: Show an image from a file path or data URL
//
// Selection mode:
//   - picker_toggle: Flip selection mode
//   - picker_select: Set selection mode
//
// Pointer events:
//   - picker_pointer_move: Draw the loupe and report the color under it
//   - picker_pointer_leave: Restore the plain image
//   - picker_click: Pick the color under the pointer
//
// Inspection:
//   - picker_frame: Canvas, base image or mosaic as PNG
//   - picker_state: Mode, readiness, pointer and last color
//   - picker_configure: Change loupe and mosaic options
//
// # Picked Colors
//
// Every successful picker_click is also announced with a
// notifications/picker/color notification carrying the color. It is written
// before the response to the click.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Loading something that is not an image is not an error: picker_load answers
// with accepted=false and the current image stays on the canvas.
//
// # Usage
//
//	srv, err := server.New(picker.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
