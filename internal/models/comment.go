// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post. Likes and Dislikes hold user
// IDs as hex strings and are independent membership sets: nothing stops
// a user from appearing in both at once.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Likes     []string           `bson:"likes" json:"likes"`
	Dislikes  []string           `bson:"dislikes" json:"dislikes"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// CommentWithAuthor pairs a comment with its author's public projection
// for the per-post listing. User is nil when the author was deleted.
type CommentWithAuthor struct {
	Comment Comment        `json:"comment"`
	User    *CommentAuthor `json:"user"`
}
