// Package publish uploads built archives to object storage.
package publish

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/plait/internal/core/domain"
	"go.trai.ch/plait/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Uploader = (*S3Uploader)(nil)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientFactory creates an S3 client on first use.
type ClientFactory func(ctx context.Context) (PutObjectAPI, error)

// S3Uploader implements ports.Uploader for s3://bucket/prefix targets.
type S3Uploader struct {
	newClient ClientFactory
}

// NewS3Uploader creates an uploader using the default AWS credential chain.
func NewS3Uploader() *S3Uploader {
	return NewS3UploaderWithClient(defaultClient)
}

// NewS3UploaderWithClient creates an uploader with a custom client factory.
func NewS3UploaderWithClient(factory ClientFactory) *S3Uploader {
	return &S3Uploader{newClient: factory}
}

func defaultClient(ctx context.Context) (PutObjectAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return s3.NewFromConfig(cfg), nil
}

// Upload puts the file at name in fsys under the target bucket and prefix.
func (u *S3Uploader) Upload(ctx context.Context, fsys billy.Filesystem, name, target string) error {
	bucket, key, err := ParseTarget(target, path.Base(name))
	if err != nil {
		return err
	}

	data, err := util.ReadFile(fsys, name)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrReadFailed.Error()), "path", name)
	}

	client, err := u.newClient(ctx)
	if err != nil {
		return zerr.Wrap(err, domain.ErrUploadFailed.Error())
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrUploadFailed.Error()), "bucket", bucket)
		return zerr.With(err, "key", key)
	}
	return nil
}

// ParseTarget splits s3://bucket/prefix into the bucket and the object key
// for file. A prefix ending in "/" or an empty prefix is treated as a
// directory; otherwise it is the full key.
func ParseTarget(target, file string) (string, string, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", zerr.With(domain.ErrInvalidUploadTarget, "target", target)
	}

	prefix := strings.TrimPrefix(u.Path, "/")
	switch {
	case prefix == "":
		return u.Host, file, nil
	case strings.HasSuffix(prefix, "/"):
		return u.Host, prefix + file, nil
	default:
		return u.Host, prefix, nil
	}
}
