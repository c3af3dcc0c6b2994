package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

// ObjectPutter is the part of the S3 client the uploader needs
type ObjectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Config holds the connection settings for an S3-compatible store
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string // Empty for AWS; set for MinIO and similar
	Region    string
	Bucket    string
}

// S3Uploader uploads rendered images to a bucket
type S3Uploader struct {
	client ObjectPutter
	bucket string
	logger core.Logger
}

// NewS3Uploader creates an uploader with static credentials
func NewS3Uploader(config S3Config, logger core.Logger) (*S3Uploader, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3UploaderWithClient(s3.New(sess), config.Bucket, logger), nil
}

// NewS3UploaderWithClient creates an uploader around an existing client
func NewS3UploaderWithClient(client ObjectPutter, bucket string, logger core.Logger) *S3Uploader {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Uploader{client: client, bucket: bucket, logger: logger}
}

// Upload encodes img in the format given by key's extension and stores it under key
func (u *S3Uploader) Upload(ctx context.Context, key string, img image.Image) error {
	ext := path.Ext(key)
	buf := new(bytes.Buffer)
	if err := Encode(buf, img, ext); err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(buf.Len())
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(ContentType(ext)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, u.bucket, size)
	return nil
}
