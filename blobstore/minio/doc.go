// Package minio implements blobstore.BlobStore for MinIO and other
// S3-compatible endpoints.
package minio
