// Package minio reads dataset files from S3-compatible object storage using
// github.com/minio/minio-go/v7.
//
//	client, err := minio.NewClient(&minio.Config{
//	    Endpoint:        "localhost:9000",
//	    AccessKeyID:     "minioadmin",
//	    SecretAccessKey: "minioadmin",
//	    BucketName:      "datasets",
//	}, log)
//	data, err := client.GetObject(ctx, "slr/train.json")
//
// A missing key is reported as ErrObjectNotFound.
package minio
