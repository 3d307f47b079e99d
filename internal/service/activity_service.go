// Package service contains the application's business logic between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"log/slog"

	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityService records notable actions in the append-only log.
type ActivityService struct {
	repo repository.ActivityLogRepository
}

// NewActivityService creates an ActivityService.
func NewActivityService(repo repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record writes an activity entry. Failures are logged and swallowed:
// the triggering action must never fail because its log entry did.
func (s *ActivityService) Record(ctx context.Context, actor primitive.ObjectID, details string) {
	entry := &models.ActivityLog{Details: details, User: actor}
	if err := s.repo.Create(ctx, entry); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to write activity log",
			slog.String("details", details),
			slog.String("error", err.Error()),
		)
	}
}

// ListAll returns every log entry, newest first.
func (s *ActivityService) ListAll(ctx context.Context) ([]models.ActivityLog, error) {
	return s.repo.ListAll(ctx)
}
