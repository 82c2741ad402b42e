// Package blob archives a store.Value as a single JSON object in an
// S3-compatible bucket (AWS S3 or MinIO), for cold-storage snapshots
// rather than the hot read/write path the sqlite and postgres
// adapters serve.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dohmane/internal/adapters/snapshot/wire"
	"dohmane/pkg/store"
)

// Config holds explicit construction parameters. Production use
// relies primarily on the environment variables read by OpenFromEnv.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// Store archives store.Value snapshots to one S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates an archive Store from an explicit Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Environment variables:
//
//	DOHMANE_BLOB_S3_BUCKET=<bucket> (required)
//	DOHMANE_BLOB_S3_REGION=<region> (default us-east-1)
//	DOHMANE_BLOB_S3_ENDPOINT=<url> (optional, for MinIO)
//	DOHMANE_BLOB_S3_PATH_STYLE=true|false (default false)

// OpenFromEnv constructs an archive Store from process environment.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("DOHMANE_BLOB_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("DOHMANE_BLOB_S3_BUCKET required")
	}
	cfg := Config{
		Bucket:    bucket,
		Region:    os.Getenv("DOHMANE_BLOB_S3_REGION"),
		Endpoint:  os.Getenv("DOHMANE_BLOB_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("DOHMANE_BLOB_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Archive uploads a full snapshot of v as a single JSON object at
// key, overwriting any object already there. Unlike a content-object
// store, a snapshot archive is expected to be overwritten on every
// export rather than treated as create-once.
func (s *Store) Archive(ctx context.Context, key string, v store.Value) error {
	snap, err := wire.MarshalValue(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Restore downloads and decodes the snapshot at key.
func (s *Store) Restore(ctx context.Context, key string) (store.Value, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return store.Value{}, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Value{}, fmt.Errorf("read %s: %w", key, err)
	}
	var snap wire.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return store.Value{}, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return wire.UnmarshalValue(snap)
}

// List returns archive object keys under prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(keys)
	return keys, nil
}
