package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

const defaultPublicURL = "https://storage.googleapis.com"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttachmentStore writes receipt and proof images to a bucket and returns their public URL.
type AttachmentStore struct {
	Client     *storage.Client
	BucketName string
	FolderName string
	PublicURL  string
	newID      func() string
}

func NewAttachmentStore(ctx context.Context, cfg config.GCSConfig, opts ...option.ClientOption) (*AttachmentStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewAttachmentStoreWithClient(client, cfg), nil
}

func NewAttachmentStoreWithClient(client *storage.Client, cfg config.GCSConfig) *AttachmentStore {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL
	}
	return &AttachmentStore{
		Client:     client,
		BucketName: cfg.BucketName,
		FolderName: strings.Trim(cfg.FolderName, "/"),
		PublicURL:  publicURL,
		newID:      uuid.NewString,
	}
}

func (g *AttachmentStore) Close(ctx context.Context) {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		logger.CtxError(ctx, "Failed to close GCS client", err)
	}
}

// Upload stores the file under <folder>/<uuid>/<filename>. Objects are never overwritten.
func (g *AttachmentStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	objectName := g.objectName(filename)
	object := g.Client.Bucket(g.BucketName).Object(objectName)

	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType
	writer.ChunkSize = 0

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		logger.CtxError(ctx, log_messages.ErrorUploadingAttachment, err, zap.String("object", objectName))
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorUploadingAttachment, err, zap.String("object", objectName))
		return "", fmt.Errorf("finalize %s: %w", objectName, err)
	}

	url := fmt.Sprintf("%s/%s/%s", g.PublicURL, g.BucketName, objectName)
	logger.CtxInfo(ctx, log_messages.AttachmentUploaded, zap.String("object", objectName))
	return url, nil
}

func (g *AttachmentStore) objectName(filename string) string {
	name := unsafeFilenameChars.ReplaceAllString(path.Base(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "attachment"
	}
	if g.FolderName == "" {
		return g.newID() + "/" + name
	}
	return g.FolderName + "/" + g.newID() + "/" + name
}
