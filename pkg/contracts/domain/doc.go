// Package domain defines the shared data model for the tabclean engines:
// the Table/Column tabular structure, the tagged scalar Value with its
// distinguished absent marker, and the DiagnosticReport produced by every
// cleaning operation.
//
// # Data Model
//
// A Table holds named, positionally aligned columns of a single logical
// type each (numeric, text, boolean, datetime, categorical). Any cell may
// be absent regardless of the column type. Tables are value-semantics at
// the API boundary: engines receive a table, never mutate it, and return
// a fresh one.
//
// # Invariants
//
//   - All columns in a table have equal length at all times.
//   - Row removal shrinks every column together, never partially.
//   - Policies are validated against the actual columns before mutation
//     begins (see Table.ValidateColumns).
//
// # Reports
//
// Report is a small ordered table of rendered per-column outcomes. It is
// a side artifact for humans and tests; no engine reads another engine's
// report.
package domain
