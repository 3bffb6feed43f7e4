package service

import (
	"context"
	"fmt"
	"time"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/mirror"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/privacy"
	"github.com/onurcolak/whatsapp-relay/pkg/storage"
)

type mediaClient interface {
	GetMediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) ([]byte, string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*domain.StoredObject, error)
}

type registrationStore interface {
	FindByPhone(ctx context.Context, phoneNumber string) ([]domain.Registration, error)
	AddImage(ctx context.Context, id int64, imageURL string) error
}

// MediaPipeline re-hosts inbound images and attaches them to the sender's
// registration. Steps that already succeeded are not undone when a later
// one fails.
type MediaPipeline struct {
	media         mediaClient
	store         objectStore
	registrations registrationStore
	mirror        *mirror.Ring
	now           func() time.Time
}

func NewMediaPipeline(
	media mediaClient,
	store objectStore,
	registrations registrationStore,
	ring *mirror.Ring,
) *MediaPipeline {
	return &MediaPipeline{
		media:         media,
		store:         store,
		registrations: registrations,
		mirror:        ring,
		now:           time.Now,
	}
}

func (p *MediaPipeline) Process(ctx context.Context, event domain.ImageEvent) (*domain.StoredObject, error) {
	url, err := p.media.GetMediaURL(ctx, event.MediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media %s: %w", event.MediaID, err)
	}

	data, contentType, err := p.media.DownloadMedia(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download media %s: %w", event.MediaID, err)
	}

	mimeType := event.MimeType
	if mimeType == "" {
		mimeType = contentType
	}

	key := storage.MediaKey(event.ShortID, event.MediaID, mimeType, p.now())

	obj, err := p.store.Upload(ctx, key, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media %s: %w", event.MediaID, err)
	}

	logger.Infof("Uploaded image %s from %s to %s (%d bytes)",
		event.MediaID, privacy.MaskPhoneNumber(event.ShortID), obj.ID, obj.Size)

	registrations, err := p.registrations.FindByPhone(ctx, event.ShortID)
	if err != nil {
		return obj, fmt.Errorf("failed to look up registration: %w", err)
	}

	if len(registrations) == 0 {
		logger.Warnf("No registration found for %s, image %s not attached",
			privacy.MaskPhoneNumber(event.ShortID), obj.ID)
	} else {
		if len(registrations) > 1 {
			logger.Warnf("Found %d registrations for %s, updating id %d",
				len(registrations), privacy.MaskPhoneNumber(event.ShortID), registrations[0].ID)
		}

		if err := p.registrations.AddImage(ctx, registrations[0].ID, obj.PublicURL); err != nil {
			return obj, fmt.Errorf("failed to attach image to registration %d: %w", registrations[0].ID, err)
		}
	}

	p.mirror.Append(domain.MirrorEntry{
		Kind:       domain.ChatMessageImage,
		From:       event.SenderID,
		ShortID:    event.ShortID,
		Text:       event.Caption,
		ImageURL:   obj.PublicURL,
		MediaID:    event.MediaID,
		StorageID:  obj.ID,
		ReceivedAt: event.ReceivedAt,
	})

	return obj, nil
}
