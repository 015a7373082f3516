package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/errors"
)

// s3Origin serves dataset files from an S3-compatible bucket instead of a
// plain HTTPS origin. Selected by an s3://bucket[/prefix] origin URL.
type s3Origin struct {
	mc     *minio.Client
	bucket string
	prefix string
}

func newS3Origin(origin string, cfg config.S3Config) (*s3Origin, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 origin %q requires an endpoint", origin)
	}

	rest := strings.TrimPrefix(origin, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("s3 origin %q has no bucket", origin)
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &s3Origin{mc: mc, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (o *s3Origin) download(ctx context.Context, remote string, w io.Writer, verify verifier) (int64, error) {
	key := strings.TrimLeft(remote, "/")
	if o.prefix != "" {
		key = o.prefix + "/" + key
	}

	obj, err := o.mc.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("fetch s3://%s/%s: %w", o.bucket, key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return 0, fmt.Errorf("fetch s3://%s/%s: %w", o.bucket, key, err)
	}

	n, err := verify.copy(w, obj)
	if err != nil {
		return 0, fmt.Errorf("fetch s3://%s/%s: %w", o.bucket, key, err)
	}
	if n != info.Size {
		return 0, fmt.Errorf("%w: got %d of %d bytes from s3://%s/%s",
			errors.ErrTruncatedDownload, n, info.Size, o.bucket, key)
	}
	if err := verify.check(); err != nil {
		return 0, fmt.Errorf("s3://%s/%s: %w", o.bucket, key, err)
	}
	return n, nil
}
