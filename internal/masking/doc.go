// Package masking redacts sensitive fields inside JSON-shaped log parameters.
//
// This package implements:
//   - A tagged-variant JSON tree (Node) parsed from arbitrary text
//   - Recursive field masking driven by an immutable FieldSet
//   - The partial-redaction rule applied to sensitive values (Desensitize)
//
// Masking is best-effort: values that are not JSON objects or arrays are
// returned untouched and no error ever reaches the caller.
package masking
