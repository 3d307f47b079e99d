package repository

import (
	"context"
	"errors"
	"time"

	"duskblog/internal/cache"
	"duskblog/internal/database"
	"duskblog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// IncrementClicks bumps the click counter and returns the updated post.
	IncrementClicks(ctx context.Context, id string) (*models.Post, error)
	// List returns posts, skipping skip documents. limit <= 0 returns all.
	List(ctx context.Context, skip, limit int64) ([]models.Post, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *database.Mongo
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *database.Mongo) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseObjectID("Post", id)
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := r.db.Posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) IncrementClicks(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseObjectID("Post", id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.db.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"clicks": 1}},
		opts,
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetSkip(skip).SetLimit(limit)
	}
	cur, err := r.db.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Categories(ctx context.Context) ([]string, error) {
	raw, err := r.db.Posts.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	categories := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}

	if _, err := r.db.Posts.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePostPages(ctx)
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	res, err := r.db.Posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", post.ID.Hex())
	}
	cache.InvalidatePostPages(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("Post", id)
	if err != nil {
		return err
	}
	res, err := r.db.Posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePostPages(ctx)
	return nil
}
