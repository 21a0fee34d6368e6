// Package s3 stores mutation queues as objects in Amazon S3 or an
// S3-compatible service such as MinIO.
//
// Each storage key maps to <prefix><key>.json. A missing object reads as
// storage.ErrNotFound.
//
//	s, err := s3.New(ctx, s3.Config{
//	    Bucket: "app-sync",
//	    Region: "eu-central-1",
//	    Prefix: "queues/",
//	})
//
// DSN form for storage.Open (after backends.Register):
//
//	s3://app-sync/queues?region=eu-central-1&endpoint=http://localhost:9000&path_style=true
//
// Tests and callers with their own SDK client pass it through WithClient.
package s3
