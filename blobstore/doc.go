// Package blobstore abstracts the object stores chunk and group files are
// shipped to for transport.
//
// Implementations:
//
//   - [LocalStore]: directory on the local filesystem
//   - [MemoryStore]: in-memory store for tests
//   - minio.Store:   MinIO / S3-compatible endpoints
//   - s3.Store:      AWS S3 via aws-sdk-go-v2
//
// Chunk objects are small and immutable, so the interface deals in whole
// objects: Put/Open/Reader rather than ranged reads.
package blobstore
