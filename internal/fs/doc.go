// Package fs abstracts the filesystem operations the chunk pipeline
// performs, so tests can inject failures at specific files.
//
//   - [LocalFS]: production implementation over the os package
//   - [FaultyFS]: test wrapper that fails operations on matching paths
//
// Production code uses fs.Default. The interface carries no context:
// local file I/O is fast and non-interruptible at the syscall level, and
// cancellation is handled between pipeline iterations instead.
package fs
