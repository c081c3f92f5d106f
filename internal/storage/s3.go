// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for
// archiving snapshots of the local stores. It wraps the AWS SDK v2 and is
// configured for path-style access (required by CEPH/Hetzner).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SnapshotPrefix is the key prefix every snapshot is written under.
const SnapshotPrefix = "snapshots/"

// snapshotLayout keeps keys sortable by time.
const snapshotLayout = "20060102T150405Z"

// DefaultLinkExpiry is how long a snapshot download link stays valid.
const DefaultLinkExpiry = 24 * time.Hour

// Client wraps an S3 client bound to the snapshot bucket.
type Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient
	bucket    string
	endpoint  string
}

// New creates an S3 storage client configured for CEPH/Hetzner with
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, bucket string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required when S3_ENDPOINT is set")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		presigner: s3.NewPresignClient(s3Client),
		bucket:    bucket,
		endpoint:  endpoint,
	}, nil
}

// SnapshotKey returns the object key for a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + t.UTC().Format(snapshotLayout) + ".json"
}

// Upload stores an object in the snapshot bucket.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// UploadSnapshot writes a JSON snapshot taken at t and returns its key and
// a presigned download URL.
func (c *Client) UploadSnapshot(ctx context.Context, t time.Time, data []byte) (key, url string, err error) {
	key = SnapshotKey(t)
	if err := c.Upload(ctx, key, "application/json", bytes.NewReader(data), int64(len(data))); err != nil {
		return "", "", err
	}
	url, err = c.PresignedURL(ctx, key, DefaultLinkExpiry)
	if err != nil {
		return key, "", err
	}
	return key, url, nil
}

// PresignedURL generates a pre-signed GET URL for an object.
// The URL is valid for the specified duration (at most 7 days).
func (c *Client) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.bucket, key, err)
	}
	return req.URL, nil
}

// Bucket returns the name of the snapshot bucket.
func (c *Client) Bucket() string {
	return c.bucket
}
