package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/pkg/imageprep"
)

// BlobStore is the slice of the blob adapter the media service uses.
type BlobStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// CleanupPublisher enqueues failed media deletes for retry.
type CleanupPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, body any) error
}

// CleanupMessage is the retry-queue payload for a failed media delete.
type CleanupMessage struct {
	PublicID string `json:"public_id"`
	Attempts int    `json:"attempts"`
}

// MediaService is the server side of the media transfer gateway: it
// prepares and stores files on the media host and deletes them by public
// id. It also implements the reconciliation engine's MediaStore and
// OrphanSink contracts.
type MediaService interface {
	UploadImage(ctx context.Context, filename string, data []byte) (model.MediaRef, error)
	// UploadDocument replaces a hosted document: when oldPublicID is set
	// the previous object is deleted first, best-effort.
	UploadDocument(ctx context.Context, filename string, data []byte, oldPublicID string) (model.MediaRef, error)
	DeleteImage(ctx context.Context, publicID string) (bool, error)
	DeleteDocument(ctx context.Context, publicID string) (bool, error)
	EnqueueCleanup(ctx context.Context, publicID string)
}

type mediaService struct {
	blob BlobStore
	prep *imageprep.Preparer
	pub  CleanupPublisher
	cfg  *config.Config
	log  *zap.Logger
}

func NewMediaService(blob BlobStore, prep *imageprep.Preparer, pub CleanupPublisher, cfg *config.Config, log *zap.Logger) MediaService {
	return &mediaService{blob: blob, prep: prep, pub: pub, cfg: cfg, log: log}
}

func (s *mediaService) UploadImage(ctx context.Context, filename string, data []byte) (model.MediaRef, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return model.MediaRef{}, fmt.Errorf("%w: %s is %s, want image", ErrUnsupportedMedia, filename, mime.String())
	}

	prepared := s.prep.Prepare(data)
	if len(prepared) != len(data) {
		// Re-encoded output is JPEG regardless of input format.
		mime = mimetype.Detect(prepared)
	}

	id := uuid.NewString()
	key := s.cfg.Media.ImageFolder + "/" + id
	url, err := s.blob.UploadBytes(ctx, key, prepared, mime.String())
	if err != nil {
		return model.MediaRef{}, err
	}
	return model.MediaRef{URL: url, PublicID: id}, nil
}

func (s *mediaService) UploadDocument(ctx context.Context, filename string, data []byte, oldPublicID string) (model.MediaRef, error) {
	mime := mimetype.Detect(data)
	if mime.String() != "application/pdf" {
		return model.MediaRef{}, fmt.Errorf("%w: %s is %s, want application/pdf", ErrUnsupportedMedia, filename, mime.String())
	}

	if oldPublicID != "" {
		if _, err := s.DeleteDocument(ctx, oldPublicID); err != nil {
			// Host-side replacement is best-effort, never blocks the new
			// upload.
			s.log.Warn("previous document delete failed",
				zap.String("public_id", oldPublicID), zap.Error(err))
		}
	}

	id := uuid.NewString()
	key := s.cfg.Media.DocumentFolder + "/" + id
	url, err := s.blob.UploadBytes(ctx, key, data, mime.String())
	if err != nil {
		return model.MediaRef{}, err
	}
	return model.MediaRef{URL: url, PublicID: id}, nil
}

func (s *mediaService) DeleteImage(ctx context.Context, publicID string) (bool, error) {
	return s.blob.Delete(ctx, s.cfg.Media.ImageFolder+"/"+publicID)
}

func (s *mediaService) DeleteDocument(ctx context.Context, publicID string) (bool, error) {
	return s.blob.Delete(ctx, s.cfg.Media.DocumentFolder+"/"+publicID)
}

// EnqueueCleanup publishes a failed delete to the cleanup queue. Publish
// failures are only logged: the fallback for a lost cleanup message is the
// same storage leak the queue exists to shrink.
func (s *mediaService) EnqueueCleanup(ctx context.Context, publicID string) {
	if s.pub == nil {
		return
	}
	msg := CleanupMessage{PublicID: publicID, Attempts: 1}
	if err := s.pub.PublishJSON(ctx, "", s.cfg.RabbitMQ.CleanupQueue, msg); err != nil {
		s.log.Warn("cleanup enqueue failed", zap.String("public_id", publicID), zap.Error(err))
	}
}
