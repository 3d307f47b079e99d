// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCategory is assigned when a post is created without a category.
const DefaultCategory = "uncategorized"

// Post represents a blog post.
// Title and Slug are both unique; Slug is always recomputed from Title
// on create and update. Clicks counts detail-page reads. CreatedByUser
// holds the creating user's id as a hex string, so the reference
// survives username changes.
type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Slug          string             `bson:"slug" json:"slug"`
	Content       string             `bson:"content" json:"content"`
	PostImage     string             `bson:"postImage,omitempty" json:"postImage,omitempty"`
	Category      string             `bson:"category" json:"category"`
	Clicks        int64              `bson:"clicks" json:"clicks"`
	CreatedByUser string             `bson:"createdByUser" json:"createdByUser"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// ParseObjectID parses a hex document id.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// Slugify derives the URL slug for a post title: words are joined with
// hyphens, lowercased, and every character outside [a-zA-Z0-9-] is
// stripped. The transform is idempotent.
func Slugify(title string) string {
	joined := strings.ToLower(strings.Join(strings.Split(title, " "), "-"))
	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
