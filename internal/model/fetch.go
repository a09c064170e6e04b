package model

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const s3Scheme = "s3://"

// parseS3URL splits s3://bucket/key. ok is false for anything else.
func parseS3URL(raw string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(raw, s3Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(raw, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// resolve returns a local path for p. Plain paths are returned unchanged;
// s3:// URLs are downloaded into dir first.
func resolve(ctx context.Context, p, dir, region string) (string, error) {
	if !strings.HasPrefix(p, s3Scheme) {
		return p, nil
	}
	bucket, key, ok := parseS3URL(p)
	if !ok {
		return "", fmt.Errorf("malformed s3 url %q", p)
	}

	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("aws session: %w", err)
	}
	svc := s3.New(sess)

	result, err := svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	defer result.Body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	local := filepath.Join(dir, path.Base(key))
	tmp, err := os.CreateTemp(dir, path.Base(key)+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, result.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", fmt.Errorf("move download into place: %w", err)
	}
	return local, nil
}
