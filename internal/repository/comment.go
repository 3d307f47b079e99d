package repository

import (
	"context"
	"errors"
	"time"

	"duskblog/internal/database"
	"duskblog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	// SetVotes overwrites both vote sets in one document write.
	SetVotes(ctx context.Context, id string, likes, dislikes []string) error
	Delete(ctx context.Context, id string) error
	// DeleteByPost removes all comments of a post, returning the count.
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

type commentRepository struct {
	db *database.Mongo
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *database.Mongo) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := parseObjectID("Comment", id)
	if err != nil {
		return nil, err
	}
	var comment models.Comment
	if err := r.db.Comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	return r.list(ctx, bson.M{})
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	oid, err := parseObjectID("Post", postID)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, bson.M{"postId": oid})
}

func (r *commentRepository) list(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	cur, err := r.db.Comments.Find(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	if comment.Dislikes == nil {
		comment.Dislikes = []string{}
	}

	if _, err := r.db.Comments.InsertOne(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) SetVotes(ctx context.Context, id string, likes, dislikes []string) error {
	oid, err := parseObjectID("Comment", id)
	if err != nil {
		return err
	}
	res, err := r.db.Comments.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"likes":     likes,
		"dislikes":  dislikes,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("Comment", id)
	if err != nil {
		return err
	}
	res, err := r.db.Comments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	oid, err := parseObjectID("Post", postID)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Comments.DeleteMany(ctx, bson.M{"postId": oid})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return res.DeletedCount, nil
}
