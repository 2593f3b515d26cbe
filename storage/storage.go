package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"comment-service/models"
)

// ErrNotFound is returned by every store when the requested record is absent.
var ErrNotFound = errors.New("record not found")

// Canonical sort keys. The service layer normalizes the user-facing spellings
// ("mostLiked", "most-liked", ...) down to these before touching a store.
const (
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortMostLiked    = "mostliked"
	SortMostDisliked = "mostdisliked"
)

// Effective filters after the sort-implies-filter rule has been applied.
const (
	FilterNone     = ""
	FilterLiked    = "liked"
	FilterDisliked = "disliked"
)

// ListCriteria selects the comments sharing one parent (nil parent selects
// the top level), restricted by the effective filter, ordered and paginated.
type ListCriteria struct {
	ParentID *primitive.ObjectID
	Filter   string
	Sort     string
	Skip     int64
	Limit    int64
}

// CommentStore - interface for all comment storage backends (MongoDB and in-memory)
type CommentStore interface {
	Insert(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.CommentDetail, error)
	List(ctx context.Context, criteria ListCriteria) ([]models.CommentDetail, error)
	Count(ctx context.Context, criteria ListCriteria) (int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	SetReactions(ctx context.Context, id primitive.ObjectID, likes, dislikes []primitive.ObjectID) error
	PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

// UserStore - interface for user storage backends. Method names carry the
// User prefix so MemoryStorage can satisfy both interfaces at once.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsersByEmail(ctx context.Context, email string) (int64, error)
}
