package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"resume-critic/internal/shared/storage/object"
	"resume-critic/internal/shared/util"
)

// uploadsDir groups résumé uploads under the bucket prefix; extracted text is
// written next to the upload through SaveWithKey.
const uploadsDir = "uploads"

// Options configures the S3 store. Endpoint and UsePathStyle target
// S3-compatible services such as MinIO or R2.
type Options struct {
	Region       string
	Bucket       string
	Prefix       string
	KMSKeyID     string
	Endpoint     string
	UsePathStyle bool
}

// Store archives résumé uploads in an S3 bucket.
type Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	kmsKeyID string
}

// New loads the default AWS credential chain and builds a Store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewFromConfig(cfg, opts)
}

// NewFromConfig builds a Store from an already resolved AWS config.
func NewFromConfig(cfg aws.Config, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := strings.TrimSpace(opts.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return &Store{
		client:   client,
		bucket:   opts.Bucket,
		prefix:   strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		kmsKeyID: strings.TrimSpace(opts.KMSKeyID),
	}, nil
}

// Save uploads a résumé under the session's hashed namespace and returns the
// storage key, size and normalized document type. Uploads are size-capped by
// the handler, so the body is buffered to give S3 a Content-Length.
func (s *Store) Save(ctx context.Context, sessionID string, fileName string, r io.Reader) (string, int64, string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read upload: %w", err)
	}
	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	mimeType := util.NormalizeMIME(http.DetectContentType(sniff), name)

	key := path.Join(uploadsDir, util.HashKey(sessionID), uuid.NewString()+"_"+name)
	if err := s.put(ctx, key, mimeType, data); err != nil {
		return "", 0, "", err
	}
	return key, int64(len(data)), mimeType, nil
}

// Open streams a stored object back.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objectKey := s.objectKey(storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// SaveWithKey writes derived artifacts, such as extracted text, at a caller
// chosen key.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if err := s.put(ctx, storageKey, contentType, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (s *Store) put(ctx context.Context, storageKey, contentType string, data []byte) error {
	objectKey := s.objectKey(storageKey)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

func (s *Store) objectKey(storageKey string) string {
	key := strings.TrimLeft(storageKey, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ object.ObjectStore = (*Store)(nil)
