package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

const snapshotContentType = "application/x-vdiff-tree"

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps snapshots as objects under a key prefix in an S3 bucket.
//
//	client := s3.NewFromConfig(cfg)
//	store := snapshot.NewS3Store(client, "my-bucket", "vdiff/snapshots/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
	closed atomic.Bool
}

// NewS3Store creates a store writing to bucket under prefix.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// S3Options describes how to reach an S3-compatible endpoint.
type S3Options struct {
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style
	// addressing is used when set.
	Endpoint string
}

// NewS3Client builds an S3 client. Credentials come from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "Environment",
			}, nil
		})),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	return s3.New(o)
}

func (s *S3Store) key(id string) string {
	return s.prefix + id
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, id string) (*vdom.Node, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return nil, notFound(id)
		}
		return nil, backendError("load", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, protocol.HardMaxAllocation+1))
	if err != nil {
		return nil, backendError("load", id, err)
	}
	if len(data) > protocol.HardMaxAllocation {
		return nil, backendError("load", id, protocol.ErrAllocationTooLarge)
	}
	return decode(id, data)
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, id string, node *vdom.Node) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data := encode(node)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(snapshotContentType),
	})
	if err != nil {
		return backendError("save", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return backendError("delete", id, err)
	}
	return nil
}

// Close implements Store. The client is owned by the caller and stays open.
func (s *S3Store) Close() error {
	s.closed.Store(true)
	return nil
}
