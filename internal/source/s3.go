package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"bridge/internal/arc"
)

// NewS3 returns a source over an S3 mirror laid out as
// {prefix}/{version}/{repository layout}.
func NewS3(region, bucket, prefix string) (Source, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewS3WithClient(s3.New(sess), bucket, prefix), nil
}

// NewS3WithClient returns an S3 source using client.
func NewS3WithClient(client s3iface.S3API, bucket, prefix string) Source {
	return layoutSource{b: &s3Backend{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}}
}

type s3Backend struct {
	client s3iface.S3API
	bucket string
	prefix string
}

func (b *s3Backend) name() string { return "s3://" + path.Join(b.bucket, b.prefix) }

func (b *s3Backend) key(parts ...string) string {
	return path.Join(append([]string{b.prefix}, parts...)...)
}

// children lists the "directories" directly under key.
func (b *s3Backend) children(ctx context.Context, key string) ([]string, error) {
	if key != "" {
		key += "/"
	}
	var out []string
	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(key),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, last bool) bool {
		for _, p := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.StringValue(p.Prefix), key), "/")
			if name != "" {
				out = append(out, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, s3NotFound(err)
	}
	return out, nil
}

func (b *s3Backend) versions(ctx context.Context) ([]string, error) {
	names, err := b.children(ctx, b.prefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if _, ok := arc.CanonicalVersion(n); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (b *s3Backend) commit(ctx context.Context, version string) (string, error) {
	body, err := b.read(ctx, version, CommitFile)
	if errors.Is(err, ErrNotFound) {
		// No marker: the version must still exist.
		names, lerr := b.children(ctx, b.prefix)
		if lerr != nil {
			return "", lerr
		}
		for _, n := range names {
			if n == version {
				return version, nil
			}
		}
		return "", fmt.Errorf("version %s: %w", version, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (b *s3Backend) read(ctx context.Context, version, p string) ([]byte, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(version, p)),
	})
	if err != nil {
		return nil, s3NotFound(err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *s3Backend) dirs(ctx context.Context, version, p string) ([]string, error) {
	names, err := b.children(ctx, b.key(version, p))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", b.key(version, p), ErrNotFound)
	}
	return names, nil
}

func s3NotFound(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return errors.Join(err, ErrNotFound)
		}
	}
	var rerr awserr.RequestFailure
	if errors.As(err, &rerr) && rerr.StatusCode() == http.StatusNotFound {
		return errors.Join(err, ErrNotFound)
	}
	return err
}
