// Package io reads and writes turnout definition libraries.
//
// # Overview
//
// A library is a list of turnout definitions: title, placement, segments,
// endpoints, the per-turnout path flags and, optionally, a saved Path Table.
// Two formats are supported and chosen by file extension.
//
// # TOML Format
//
// Each turnout is one [[turnout]] table:
//
//	[[turnout]]
//	title = "Peco SL-E95 Medium Left"
//	path_no_combine = false
//
//	[turnout.placement]
//	origin = { x = 0.0, y = 0.0 }
//	angle = 0.0
//
//	[[turnout.segments]]
//	kind = "straight"
//	track = true
//	pos = [{ x = 0.0, y = 0.0 }, { x = 0.0, y = 10.0 }]
//
//	[[turnout.endpoints]]
//	pos = { x = 0.0, y = 0.0 }
//	angle = 180.0
//
//	[[turnout.paths.groups]]
//	label = "P0"
//	subpaths = [[1]]
//
// # JSON Format
//
// The JSON form has a single "turnouts" array whose elements use the same
// field names:
//
//	{"turnouts": [{"title": "...", "segments": [...], "endpoints": [...]}]}
//
// # Import
//
// [Import] reads a file and records the file name and the line each
// definition starts on, so that mismatch reports can point back at the
// definition. Every definition is validated and titles must be unique.
//
// # Export
//
// [Export] writes a library in the format named by the file extension.
// [WriteTable] writes a single Path Table as JSON for tools that consume
// generated tables.
package io
