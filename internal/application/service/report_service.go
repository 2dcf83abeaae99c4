package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/snapshot"
)

// ErrNoDigestChat is returned when no chat is configured for the digest.
var ErrNoDigestChat = errors.New("digest chat id is not configured")

// ReportService builds operational metrics outside a chat request.
type ReportService interface {
	// Metrics fetches and aggregates the current records.
	Metrics(ctx context.Context) (*snapshot.Metrics, error)
	// SendDigest pushes the urgent-items digest to the team chat and returns
	// the text that was sent.
	SendDigest(ctx context.Context) (string, error)
}

type reportServiceImpl struct {
	fetcher  RecordFetcher
	sender   port.MessageSender
	chatID   string
	location *time.Location
	now      func() time.Time
	logger   Logger
}

// NewReportService creates a new ReportService. sender may be nil when the
// digest is not used.
func NewReportService(
	fetcher RecordFetcher,
	sender port.MessageSender,
	chatID string,
	location *time.Location,
	logger Logger,
) ReportService {
	if location == nil {
		location = time.Local
	}
	return &reportServiceImpl{
		fetcher:  fetcher,
		sender:   sender,
		chatID:   chatID,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Metrics implements ReportService.
func (s *reportServiceImpl) Metrics(ctx context.Context) (*snapshot.Metrics, error) {
	if s.fetcher == nil {
		return nil, ErrNotConfigured
	}
	m := snapshot.Aggregate(s.fetcher.Fetch(ctx), s.now().In(s.location))
	if len(m.Failed) > 0 {
		s.logger.Warn("Metrics built with missing data", "failed", m.Failed)
	}
	return m, nil
}

// SendDigest implements ReportService.
func (s *reportServiceImpl) SendDigest(ctx context.Context) (string, error) {
	if s.sender == nil {
		return "", fmt.Errorf("digest sender: %w", ErrNotConfigured)
	}
	if s.chatID == "" {
		return "", ErrNoDigestChat
	}

	m, err := s.Metrics(ctx)
	if err != nil {
		return "", err
	}
	text := snapshot.RenderDigest(m)

	if err := s.sender.SendText(ctx, s.chatID, text); err != nil {
		s.logger.Error("Failed to send digest", "error", err, "chat_id", s.chatID)
		return "", fmt.Errorf("send digest: %w", err)
	}

	s.logger.Info("Digest sent",
		"chat_id", s.chatID,
		"overdue_bills", len(m.Bills.Overdue),
		"urgent_tickets", len(m.Tickets.Urgent),
		"message_length", len(text))
	return text, nil
}
