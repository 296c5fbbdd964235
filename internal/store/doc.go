// Package store implements the persistence boundary: three named JSON
// records (chat history, server state, settings snapshot) kept either as
// files on disk or as Redis keys. All writes are best-effort.
package store
