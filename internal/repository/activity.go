package repository

import (
	"context"
	"time"

	"duskblog/internal/database"
	"duskblog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityLogRepository defines persistence for the append-only activity log.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	ListAll(ctx context.Context) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *database.Mongo
}

// NewActivityLogRepository returns a new ActivityLogRepository implementation.
func NewActivityLogRepository(db *database.Mongo) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	if log.Date.IsZero() {
		log.Date = time.Now()
	}
	if _, err := r.db.ActivityLogs.InsertOne(ctx, log); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityLogRepository) ListAll(ctx context.Context) ([]models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.db.ActivityLogs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	var logs []models.ActivityLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, models.NewInternalError(err)
	}
	return logs, nil
}
