package controllers

import (
	"context"
	"io"

	"starlit/starlit/sources/storage"
	"starlit/starlit/utils/logging"

	"go.uber.org/zap"
)

// KBController stores knowledge-base source documents (PDF, DOCX, ...) for
// the inference service's indexer to pick up. Indexing itself happens on the
// inference side; this end only owns the object storage.
type KBController struct {
	minio *storage.MinIOClient
}

func NewKBController(minio *storage.MinIOClient) *KBController {
	return &KBController{minio: minio}
}

func (c *KBController) Upload(ctx context.Context, userID int, filename, contentType string, size int64, body io.Reader) (*storage.Document, error) {
	doc, err := c.minio.UploadDocument(ctx, filename, contentType, size, body)
	if err != nil {
		return nil, err
	}
	logging.AppLogger.Info("kb document uploaded",
		zap.Int("user_id", userID),
		zap.String("key", doc.Key),
		zap.Int64("size", doc.Size),
	)
	return doc, nil
}

func (c *KBController) List(ctx context.Context) ([]storage.Document, error) {
	return c.minio.ListDocuments(ctx)
}
