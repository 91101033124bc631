// Package navigator reshapes and orders the group/site hierarchy of a
// navigator document. It works on in-memory collections only and never
// performs I/O; batch operations return diagnostics next to partial results.
package navigator
