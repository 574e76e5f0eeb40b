package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"github.com/vigilo-labs/vigil-backend/internal/worker"
)

// MonitorService is the violation pipeline. Incoming events are queued
// to Redis for batched persistence and fanned out over Pub/Sub for the
// live monitoring view. The HTTP path never writes to Postgres.
type MonitorService struct {
	rdb     *redis.Client
	tests   *repository.TestRepository
	users   *repository.UserRepository
	proctor *repository.ProctorRepository
	log     zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(
	rdb *redis.Client,
	tests *repository.TestRepository,
	users *repository.UserRepository,
	proctor *repository.ProctorRepository,
	log zerolog.Logger,
) *MonitorService {
	return &MonitorService{
		rdb:     rdb,
		tests:   tests,
		users:   users,
		proctor: proctor,
		log:     log.With().Str("component", "monitor_service").Logger(),
	}
}

// RecordVideoFeed ingests a camera frame outcome. Clean frames are
// stored as liveness pings under the video_feed kind.
func (s *MonitorService) RecordVideoFeed(ctx context.Context, studentID int, req *model.VideoFeedRequest) error {
	kind := req.Violation
	if kind == "" {
		kind = "video_feed"
	}
	return s.ingest(ctx, config.WorkerKey.PersistProctorQueue, req.TestID, studentID, kind, req.Detail)
}

// RecordWindowEvent ingests a browser window integrity event.
func (s *MonitorService) RecordWindowEvent(ctx context.Context, studentID int, req *model.WindowEventRequest) error {
	return s.ingest(ctx, config.WorkerKey.PersistWindowQueue, req.TestID, studentID, req.Event, req.Detail)
}

func (s *MonitorService) ingest(ctx context.Context, queue, testID string, studentID int, kind string, detail json.RawMessage) error {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTestNotFound
		}
		return fmt.Errorf("load test: %w", err)
	}

	now := time.Now()
	payload := worker.EventPayload{
		TestID:    testID,
		StudentID: studentID,
		Kind:      kind,
		Detail:    detail,
		Timestamp: now.Unix(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := s.rdb.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("queue event: %w", err)
	}

	s.publishLive(ctx, testID, studentID, kind, now)
	return nil
}

// publishLive fans the event out to any live monitoring sockets. A
// failed publish only degrades the live view; persistence already
// happened through the queue, so errors are logged and swallowed.
func (s *MonitorService) publishLive(ctx context.Context, testID string, studentID int, kind string, at time.Time) {
	entry := model.MonitorEntry{
		StudentID:  studentID,
		Kind:       kind,
		Display:    repository.PrettyViolation(kind),
		RecordedAt: at,
	}
	if user, err := s.users.GetByID(ctx, studentID); err == nil {
		entry.Email = user.Email
		entry.Name = user.Name
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	channel := config.CacheKey.TestMonitorChannel(testID)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID).Msg("Failed to publish live event")
	}
}

// Subscribe opens a Pub/Sub subscription on a test's live channel. The
// caller owns the subscription and must close it.
func (s *MonitorService) Subscribe(ctx context.Context, testID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.TestMonitorChannel(testID))
}

// Logs returns the persisted event log of a test with display text.
func (s *MonitorService) Logs(ctx context.Context, testID string) ([]model.MonitorEntry, error) {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}
	return s.proctor.ListMonitorEntries(ctx, testID)
}

// ViolationCounts returns per-student violation totals for a test.
func (s *MonitorService) ViolationCounts(ctx context.Context, testID string) (map[int]int64, error) {
	return s.proctor.ViolationCounts(ctx, testID)
}
