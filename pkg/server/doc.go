// Package server exposes one live canvas over a JSON HTTP API.
//
// # Routes
//
//	GET    /version                   build information
//	GET    /api/graph                 current canvas as a snapshot
//	POST   /api/nodes                 add a node
//	DELETE /api/nodes/{id}            delete a node and its edges
//	POST   /api/nodes/{id}/anchors    add an anchor to a node
//	POST   /api/edges                 connect two anchors
//	DELETE /api/edges                 disconnect two anchors
//	POST   /api/selection             set, add to, remove from or clear the selection
//	POST   /api/drag/start            start dragging a group (default: the selection)
//	POST   /api/cursor                move the cursor
//	POST   /api/drag/end              apply the final cursor and stop the drag
//	POST   /api/connection/begin      start an edge from an anchor to the cursor
//	POST   /api/connection/complete   finish it on a target anchor
//	POST   /api/connection/cancel     discard it
//	POST   /api/save/{name}           store the canvas in the configured sink
//	POST   /api/load/{name}           replace the canvas with a stored one
//	GET    /api/export/dot            Graphviz DOT (?detailed=1&pinned=1)
//	GET    /api/export/svg            rendered SVG (same options)
//
// # Errors
//
// Failures are returned as
//
//	{"error": {"code": "NODE_NOT_FOUND", "message": "node \"x\" not found"}}
//
// with 404 for not-found codes, 400 for validation codes, 501 when no
// storage is configured and 500 otherwise.
//
// # Concurrency
//
// Handlers never touch the canvas directly. All canvas work is submitted to
// a [movement.Loop], which also runs drag frames.
package server
