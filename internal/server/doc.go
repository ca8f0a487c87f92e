// Package server exposes the tracker's JSON REST API.
//
// Every error response has the shape {"error": message}. Store sentinels map
// onto statuses: store.ErrNotFound is 404, store.ErrConflict is 409 and
// store.ErrInUse is 400. Anything else is logged and answered with 500.
package server
