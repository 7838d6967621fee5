package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
	"go.uber.org/zap"
)

const (
	imageFolder = "kyc_images"
	videoFolder = "kyc_videos"
)

// Upload is one file of a KYC submission
type Upload struct {
	Name string
	Body io.Reader
}

// KYCService runs the submission and review workflow
type KYCService struct {
	store    ports.KYCStore
	media    ports.MediaStore
	eventPub ports.EventPublisher
	logger   *zap.Logger
}

// NewKYCService creates a new KYC service
func NewKYCService(store ports.KYCStore, media ports.MediaStore, eventPub ports.EventPublisher, logger *zap.Logger) *KYCService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KYCService{store: store, media: media, eventPub: eventPub, logger: logger}
}

// Submit stores both media files and records a pending submission. created is
// false when a rejected submission was replaced.
func (s *KYCService) Submit(ctx context.Context, userID string, image, video *Upload) (*core.Submission, bool, error) {
	// Refuse early so media is not stored for a submission that cannot win.
	// The store repeats the check atomically.
	existing, err := s.store.Find(ctx, userID)
	switch {
	case err == nil:
		if existing.Status == core.KYCApproved {
			return nil, false, core.ErrKYCAlreadyApproved
		}
		if existing.Status == core.KYCPending {
			return nil, false, core.ErrKYCPending
		}
	case !errors.Is(err, core.ErrKYCNotFound):
		return nil, false, fmt.Errorf("failed to load submission: %w", err)
	}

	if image == nil || image.Body == nil || video == nil || video.Body == nil {
		return nil, false, core.ErrKYCMediaRequired
	}

	imageURL, err := s.media.Save(ctx, imageFolder, image.Name, image.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store image: %w", err)
	}
	videoURL, err := s.media.Save(ctx, videoFolder, video.Name, video.Body)
	if err != nil {
		s.discard(ctx, imageURL)
		return nil, false, fmt.Errorf("failed to store video: %w", err)
	}

	sub, created, err := s.store.Submit(ctx, userID, imageURL, videoURL)
	if err != nil {
		// A concurrent submit won after the early check
		s.discard(ctx, imageURL, videoURL)
		return nil, false, err
	}

	s.publish(ctx, sub)
	return sub, created, nil
}

// Status returns the caller's submission
func (s *KYCService) Status(ctx context.Context, userID string) (*core.Submission, error) {
	return s.store.Find(ctx, userID)
}

// Approve moves a pending submission to approved
func (s *KYCService) Approve(ctx context.Context, userID string) (*core.Submission, error) {
	return s.review(ctx, userID, core.KYCApproved)
}

// Reject moves a pending submission to rejected, allowing the user to resubmit
func (s *KYCService) Reject(ctx context.Context, userID string) (*core.Submission, error) {
	return s.review(ctx, userID, core.KYCRejected)
}

func (s *KYCService) review(ctx context.Context, userID string, status core.KYCStatus) (*core.Submission, error) {
	sub, err := s.store.SetStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sub)
	return sub, nil
}

func (s *KYCService) discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := s.media.Remove(ctx, url); err != nil {
			s.logger.Warn("failed to remove orphaned media", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *KYCService) publish(ctx context.Context, sub *core.Submission) {
	if err := s.eventPub.PublishKYCStatusChanged(ctx, sub); err != nil {
		s.logger.Warn("failed to publish kyc status event",
			zap.String("user_id", sub.UserID),
			zap.String("status", string(sub.Status)),
			zap.Error(err),
		)
	}
}
