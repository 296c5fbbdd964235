// Package domain defines the core domain types and interfaces.
//
// This package contains the wire envelope types, the connection and registry
// contracts, and the persistence boundary. No implementation code - just
// contracts. Prevents circular imports by keeping interfaces on the consumer
// side.
package domain
