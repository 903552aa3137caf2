package storage

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"starlit/starlit/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

// Document describes one stored knowledge-base source file.
type Document struct {
	Key        string    `json:"key"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func NewMinIOClient(cfg config.Config) (*MinIOClient, error) {
	// Use insecure for local (no HTTPS)
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// UploadDocument stores one KB source file. The key is derived from the
// filename, so re-uploading under the same name replaces the stored copy:
// last write wins, the newest version is what the indexer sees.
func (m *MinIOClient) UploadDocument(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*Document, error) {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(filename)))
	key := filepath.Join("documents", fmt.Sprintf("%s%s", hash, filepath.Ext(filename)))

	_, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Document{
		Key:        key,
		Filename:   filename,
		Size:       size,
		UploadedAt: time.Now(),
	}, nil
}

// ListDocuments returns the stored KB documents.
func (m *MinIOClient) ListDocuments(ctx context.Context) ([]Document, error) {
	docs := []Document{}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: "documents/"}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		docs = append(docs, Document{
			Key:        obj.Key,
			Size:       obj.Size,
			UploadedAt: obj.LastModified,
		})
	}
	return docs, nil
}
