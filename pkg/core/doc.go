// Package core defines the shared language of the translator.
//
// This package contains:
//   - The expression node set (Expr and its concrete node types)
//   - Statement nodes assembled by the compiler (Select, Insert, OrderBy)
//   - Field type descriptors (Field, FieldType)
//   - Adapter and dialect configuration types (AdapterConfig, DialectConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
