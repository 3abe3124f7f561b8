// Package s3 stores data sets in Amazon S3.
//
//	store, err := s3.New(ctx, "ime-data", func(o *s3.Options) {
//	    o.Prefix = "releases/"
//	    o.Region = "us-east-1"
//	})
//
//	eng, err := imecore.Open(ctx, imecore.Remote(store, "imecore.data"))
//
// Whole data sets are fetched with parallel ranged GETs through the SDK
// download manager. Uploads carry a CRC32C checksum that S3 verifies.
package s3
