// Package uploads archives raw spreadsheet files before parsing, so a failed
// import can be replayed from the original bytes.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Archive stores uploaded files. Archiving is best-effort: the import flow
// proceeds even when the archive is unavailable.
type Archive interface {
	Put(ctx context.Context, companyID, importID, filename string, content []byte) error
}

type S3Archive struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("uploads: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("uploads: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("uploads: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("uploads: init s3 client: %w", err)
	}
	return &S3Archive{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Archive) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("uploads: archive is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Archive) Put(ctx context.Context, companyID, importID, filename string, content []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("uploads: ensure bucket: %w", err)
	}
	key := objectKey(companyID, importID, filename)
	_, err := s.client.PutObject(ctx, s.bucketName, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("uploads: put %s: %w", key, err)
	}
	return nil
}

func objectKey(companyID, importID, filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "upload.csv"
	}
	return fmt.Sprintf("%s/%s/%d-%s", companyID, importID, time.Now().Unix(), name)
}

// NullArchive drops everything; used when no archive endpoint is configured.
type NullArchive struct{}

func (NullArchive) Put(context.Context, string, string, string, []byte) error { return nil }
