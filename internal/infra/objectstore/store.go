// Package objectstore keeps proof-of-payment files in an S3-compatible bucket (Cloudflare R2).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"path"
	"strings"

	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errForeignURL = errors.New("url does not belong to this bucket")

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// ObjectAPI is the subset of the S3 client the store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	api       ObjectAPI
	bucket    string
	publicURL string
	prefix    string
	tracer    trace.Tracer
}

func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

func NewStore(api ObjectAPI, cfg config.StorageConfig) *Store {
	return &Store{
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		prefix:    strings.Trim(cfg.KeyPrefix, "/"),
		tracer:    otel.Tracer("objectstore"),
	}
}

// Put stores body under a fresh random key and returns its public URL.
func (s *Store) Put(ctx context.Context, body []byte, contentType string) (string, error) {
	key := s.newKey(contentType)

	ctx, span := s.tracer.Start(ctx, "objectstore.Put")
	defer span.End()
	span.SetAttributes(
		attribute.String("object.key", key),
		attribute.Int("object.size", len(body)),
	)

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", infra.WrapRepoErr("failed to upload object", err, infra.KindUpstreamFailure)
	}

	return s.publicURL + "/" + key, nil
}

func (s *Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return infra.WrapRepoErr("failed to delete object", errForeignURL, infra.KindNotFound)
	}

	ctx, span := s.tracer.Start(ctx, "objectstore.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("object.key", key))

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return infra.WrapRepoErr("failed to delete object", err, infra.KindUpstreamFailure)
	}
	return nil
}

func (s *Store) newKey(contentType string) string {
	name := uuid.NewString() + extensionFor(contentType)
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := extensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
