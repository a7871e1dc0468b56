package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"server/internal/domain"
	"server/internal/imageproc"
)

// s3Store writes artifacts to an S3-compatible bucket. Objects are publicly
// readable under the configured base URL unless PrivateACL routes reads
// through the blob proxy.
type s3Store struct {
	bucket        string
	client        *s3.Client
	publicBaseURL string
	privateACL    bool
}

func newS3Store(ctx context.Context, opts Options) (*s3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.S3AccessKeyID, opts.S3SecretKey, ""),
		),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.S3Endpoint)
		}
		o.UsePathStyle = opts.S3UsePathStyle
	})

	publicBaseURL := strings.TrimSuffix(opts.S3PublicBaseURL, "/")
	if publicBaseURL == "" && opts.S3Endpoint != "" {
		publicBaseURL = strings.TrimSuffix(opts.S3Endpoint, "/") + "/" + opts.S3Bucket
	}

	return &s3Store{
		bucket:        opts.S3Bucket,
		client:        client,
		publicBaseURL: publicBaseURL,
		privateACL:    opts.PrivateACL,
	}, nil
}

func (s *s3Store) Backend() Backend { return BackendS3 }

func (s *s3Store) SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	// Millisecond timestamps can collide across concurrent writers, so the
	// object-store key carries a random suffix.
	return s.save(ctx, objectKey(uploadsPrefix, "upload", extension, true), data, extension)
}

func (s *s3Store) SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	return s.save(ctx, objectKey(generatedPrefix, "generated", extension, true), data, extension)
}

func (s *s3Store) save(ctx context.Context, key string, data []byte, extension string) (domain.StoredArtifact, error) {
	contentType := imageproc.MIMETypeFor("." + extension)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendS3), Key: key, Err: err}
	}
	url := s.publicBaseURL + "/" + key
	if s.privateACL {
		url = proxyURL(key)
	}
	return domain.StoredArtifact{URL: url, Backend: string(BackendS3)}, nil
}

func (s *s3Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			err = domain.ErrObjectNotFound
		}
		return nil, "", &domain.StorageReadError{Backend: string(BackendS3), Key: key, Err: err}
	}
	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = imageproc.MIMETypeFor(key)
	}
	return out.Body, contentType, nil
}
