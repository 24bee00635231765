// Package objectstore fetches source data files from S3 when a data source
// is configured as an s3:// URI instead of a local path.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const uriScheme = "s3://"

// IsObjectURI reports whether a configured source points at the object
// store rather than the local filesystem.
func IsObjectURI(source string) bool {
	return strings.HasPrefix(source, uriScheme)
}

// Client downloads source objects to the local data directory.
type Client struct {
	downloader *manager.Downloader
	log        zerolog.Logger
}

// New creates an object store client using the SDK's default credential
// chain (environment, shared config, instance role).
func New(ctx context.Context, log zerolog.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &Client{
		downloader: manager.NewDownloader(s3.NewFromConfig(cfg)),
		log:        log.With().Str("client", "objectstore").Logger(),
	}, nil
}

// Fetch downloads an s3://bucket/key object into destDir and returns the
// local file path.
func (c *Client) Fetch(ctx context.Context, uri, destDir string) (string, error) {
	bucket, key, err := parseURI(uri)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(key))
	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	defer f.Close()

	n, err := c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", uri, err)
	}

	c.log.Info().Str("uri", uri).Str("dest", destPath).Int64("bytes", n).Msg("Fetched source object")
	return destPath, nil
}

// parseURI splits s3://bucket/key into its parts.
func parseURI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, uriScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid object URI %q (expected s3://bucket/key)", uri)
	}
	return parts[0], parts[1], nil
}
