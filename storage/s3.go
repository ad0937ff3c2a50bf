package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/myaicommunity/agenthub/errs"
)

// S3Store keeps uploads in an S3-compatible bucket. Stored paths are the
// object keys; public URLs are built from the configured base URL.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(client *s3.Client, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *S3Store) Save(ctx context.Context, r io.Reader, originalName, mimeType string, size int64) (SavedFile, error) {
	name := uniqueName(originalName)
	key := projectUploadDir + "/" + name

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return SavedFile{}, errs.NewFileWriteError(originalName, err)
	}

	return SavedFile{
		Filename:     name,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		Path:         key,
		URL:          s.publicURL + "/" + key,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return errs.NewFileDeleteError(path, err)
	}
	return nil
}
