// Copyright 2025 Substrate Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package minio implements objectstore.Client on MinIO/S3-compatible servers.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/substratehq/depot/objectstore"
)

// Config holds connection settings for one MinIO/S3 endpoint.
type Config struct {
	// EndpointURL is the server address, with or without a scheme.
	EndpointURL string
	// AccessKeyID and SecretAccessKey are the static credentials.
	AccessKeyID     string
	SecretAccessKey string
	// UseSSL enables TLS; an https:// scheme in EndpointURL also enables it.
	UseSSL bool
	// Region is optional and passed through to bucket creation.
	Region string
}

// Client is a minio-go backed objectstore.Client.
type Client struct {
	client   *minio.Client
	endpoint string
	region   string
}

var _ objectstore.Client = (*Client)(nil)

// New creates a Client from config.
func New(cfg Config) (*Client, error) {
	if cfg.EndpointURL == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("credentials are required")
	}

	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}

	useSSL := cfg.UseSSL
	if u.Scheme == "https" {
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Client{
		client:   client,
		endpoint: cfg.EndpointURL,
		region:   cfg.Region,
	}, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Put uploads data under key.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := c.client.PutObject(ctx, bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("put %s/%s on %s: %w", bucket, key, c.endpoint, err)
	}
	return nil
}

// Get returns the object's bytes.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s on %s: %w", bucket, key, c.endpoint, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s/%s", objectstore.ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("read %s/%s on %s: %w", bucket, key, c.endpoint, err)
	}
	return data, nil
}

// Count returns the number of objects in bucket by listing it. Listing is
// the only portable way to count on S3-compatible servers; the result is a
// load proxy, not an exact inventory.
func (c *Client) Count(ctx context.Context, bucket string) (int, error) {
	count := 0
	for obj := range c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list %s on %s: %w", bucket, c.endpoint, obj.Err)
		}
		count++
	}
	return count, nil
}

// EnsureBucket creates bucket if it does not already exist.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s on %s: %w", bucket, c.endpoint, err)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return fmt.Errorf("create bucket %s on %s: %w", bucket, c.endpoint, err)
	}
	return nil
}
