// Package mirror uploads tar.gz snapshots of the countries tree to S3 as a
// secondary copy alongside the git history.
package mirror

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fcobackup/fco-backup-fetcher/internal/config"
	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// Uploader pushes snapshot archives to a bucket
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewUploader builds an Uploader from the mirror configuration using the
// default AWS credential chain.
func NewUploader(ctx context.Context, cfg config.MirrorConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("mirror bucket is not configured")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Snapshot packs countriesRoot into a tar.gz archive and uploads it,
// returning the object key.
func (u *Uploader) Snapshot(ctx context.Context, countriesRoot string) (string, error) {
	var buf bytes.Buffer
	if err := packTree(countriesRoot, &buf); err != nil {
		return "", fmt.Errorf("failed to pack snapshot: %w", err)
	}

	key := u.snapshotKey(time.Now().UTC())
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	utils.GetLogger().Infof("Uploaded snapshot s3://%s/%s (%d bytes)", u.bucket, key, buf.Len())
	return key, nil
}

func (u *Uploader) snapshotKey(now time.Time) string {
	name := fmt.Sprintf("countries-%s.tar.gz", now.Format("20060102T150405Z"))
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

// packTree writes root's contents into w as a gzipped tar archive with
// paths relative to root.
func packTree(root string, w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
