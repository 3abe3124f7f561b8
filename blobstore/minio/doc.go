// Package minio stores data sets in MinIO and other S3-compatible object
// stores through the MinIO client.
//
//	store, err := minio.Dial("localhost:9000", "ime-data", func(o *minio.Options) {
//	    o.AccessKey = "minioadmin"
//	    o.SecretKey = "minioadmin"
//	})
//
//	eng, err := imecore.Open(ctx, imecore.Remote(store, "imecore.data"))
//
// Use it where the AWS SDK is unavailable, e.g. air-gapped deployments.
package minio
