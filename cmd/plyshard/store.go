package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/plyshard/blobstore"
	minioblob "github.com/hupe1980/plyshard/blobstore/minio"
	s3blob "github.com/hupe1980/plyshard/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// resolveStore maps a --store target onto a blob store implementation:
//
//	s3://bucket/prefix     S3 via the default AWS credential chain
//	minio://bucket/prefix  MinIO via MINIO_ENDPOINT / MINIO_ACCESS_KEY /
//	                       MINIO_SECRET_KEY (MINIO_USE_SSL=true for TLS)
//	anything else          a local directory
func resolveStore(ctx context.Context, target string) (blobstore.BlobStore, error) {
	switch {
	case strings.HasPrefix(target, "s3://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(target, "s3://"))
		if bucket == "" {
			return nil, fmt.Errorf("bad s3 target %q", target)
		}
		return s3blob.NewStoreFromConfig(ctx, bucket, prefix)

	case strings.HasPrefix(target, "minio://"):
		bucket, prefix := splitBucket(strings.TrimPrefix(target, "minio://"))
		if bucket == "" {
			return nil, fmt.Errorf("bad minio target %q", target)
		}

		endpoint := os.Getenv("MINIO_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("minio target %q needs MINIO_ENDPOINT", target)
		}
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_USE_SSL") == "true",
		})
		if err != nil {
			return nil, err
		}
		return minioblob.NewStore(client, bucket, prefix), nil

	default:
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, err
		}
		return blobstore.NewLocalStore(target), nil
	}
}

func splitBucket(rest string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, prefix
}
