// Package storage talks to the S3 compatible object storage of the managed
// backend and builds the public URLs of stored objects.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appcfg "github.com/iliyamo/wedding-guests/internal/config"
)

// ErrObjectNotFound is returned by Get for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// PublicURL joins the public storage base, the bucket and the escaped object
// key.  The key is escaped as one component, so a "/" inside it becomes %2F.
// An empty key yields nil.
func PublicURL(base, bucket string, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := strings.TrimRight(base, "/") + "/" + bucket + "/" + escapeComponent(*key)
	return &u
}

// componentKeep lists the marks browsers leave unescaped in a URI component
// but url.QueryEscape encodes.
var componentKeep = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

func escapeComponent(s string) string {
	return componentKeep.Replace(url.QueryEscape(s))
}

// S3Store uploads objects through the S3 API.
type S3Store struct {
	client *s3.Client
}

// NewS3Store builds an S3 client for the configured endpoint with static
// credentials.
func NewS3Store(ctx context.Context, sc appcfg.StorageConfig) (*S3Store, error) {
	if sc.AccessKeyID == "" || sc.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials not configured")
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(sc.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(sc.AccessKeyID, sc.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
		o.UsePathStyle = sc.UsePathStyle
	})
	return &S3Store{client: client}, nil
}

// Put stores body under bucket/key, replacing any existing object.
func (s *S3Store) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("[storage %s] %w", bucket, err)
	}
	return nil
}

// Get reads a whole object.  It is used by the media proxy.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("[storage %s] %w", bucket, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("[storage %s] read: %w", bucket, err)
	}
	return data, aws.ToString(out.ContentType), nil
}
