// Package vm implements the Verdin object model consumed by the
// dispatch engine.
//
// This package contains:
//   - NaN-tagged value representation
//   - Object layout and slot access
//   - Classes, method tables, and constant tables
//   - Method-table assumptions (cheap cache-invalidation tokens)
//   - Call targets (executable method bodies)
package vm
