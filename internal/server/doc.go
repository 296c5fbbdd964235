// Package server exposes the hub over HTTP: the WebSocket upgrade endpoint,
// health probes, and Prometheus metrics.
package server
