// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is an append-only record of a notable action.
// Writes are best-effort: a failed log write must never fail the action
// that triggered it.
type ActivityLog struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Details string             `bson:"details" json:"details"`
	User    primitive.ObjectID `bson:"user" json:"user"`
	Date    time.Time          `bson:"date" json:"date"`
}
