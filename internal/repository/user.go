// Package repository implements the data access layer over MongoDB.
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
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetAdmin(ctx context.Context) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *database.Mongo
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *database.Mongo) UserRepository {
	return &userRepository{db: db}
}

// parseObjectID converts a client-supplied id into an ObjectID.
// Malformed ids behave like ids that do not resolve.
func parseObjectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NewNotFoundError(resource, id)
	}
	return oid, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID("User", id)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	var user models.User
	if err := r.db.Users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetAdmin returns the first admin account. It backs the contact-admin
// mail flow, which addresses whichever admin exists.
func (r *userRepository) GetAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.db.Users.FindOne(ctx, bson.M{"isAdmin": true}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Admin", "any")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := r.db.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("User with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.db.Users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("User with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", user.ID.Hex())
	}
	cache.InvalidateUser(ctx, user.ID.Hex())
	return nil
}

// SetRefreshToken overwrites the single refresh-token slot. This runs on
// every authenticated request, so it deliberately skips cache
// invalidation: the token is never served from cache.
func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateTokenField(ctx, id, bson.M{"$set": bson.M{"refreshToken": token}})
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateTokenField(ctx, id, bson.M{"$unset": bson.M{"refreshToken": 1}})
}

func (r *userRepository) updateTokenField(ctx context.Context, id string, update bson.M) error {
	oid, err := parseObjectID("User", id)
	if err != nil {
		return err
	}
	res, err := r.db.Users.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) SetPassword(ctx context.Context, id, hash string) error {
	oid, err := parseObjectID("User", id)
	if err != nil {
		return err
	}
	res, err := r.db.Users.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("User", id)
	if err != nil {
		return err
	}
	res, err := r.db.Users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.db.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
