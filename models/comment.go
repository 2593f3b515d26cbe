package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content string             `bson:"content" json:"content" binding:"required"`
	Author  primitive.ObjectID `bson:"author" json:"author"`

	// nil for a top-level comment, set for a reply
	ParentComment *primitive.ObjectID `bson:"parent_comment" json:"parent_comment"`

	// Replies is maintained on top-level comments only; a reply's own
	// list stays empty (one level of nesting).
	Replies  []primitive.ObjectID `bson:"replies" json:"replies"`
	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes []primitive.ObjectID `bson:"dislikes" json:"dislikes"`

	IsEdited  bool      `bson:"is_edited" json:"is_edited"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Author is the public projection of a user embedded in comment responses.
type Author struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// ReplyDetail is a reply as embedded inside its parent's listing entry.
type ReplyDetail struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Content      string               `bson:"content" json:"content"`
	Author       Author               `bson:"author" json:"author"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes     []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	LikeCount    int                  `bson:"like_count" json:"like_count"`
	DislikeCount int                  `bson:"dislike_count" json:"dislike_count"`
	IsEdited     bool                 `bson:"is_edited" json:"is_edited"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// CommentDetail is the denormalized read shape: the comment with its author
// resolved, all replies embedded and the derived counts attached. The viewer
// flags are set for authenticated requests only, and only on top-level
// results, never on the embedded replies.
type CommentDetail struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	Content       string               `bson:"content" json:"content"`
	Author        Author               `bson:"author" json:"author"`
	ParentComment *primitive.ObjectID  `bson:"parent_comment" json:"parent_comment"`
	Likes         []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes      []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	Replies       []ReplyDetail        `bson:"replies" json:"replies"`
	LikeCount     int                  `bson:"like_count" json:"like_count"`
	DislikeCount  int                  `bson:"dislike_count" json:"dislike_count"`
	ReplyCount    int                  `bson:"reply_count" json:"reply_count"`
	IsEdited      bool                 `bson:"is_edited" json:"is_edited"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`

	IsLikedByUser    *bool `bson:"-" json:"is_liked_by_user,omitempty"`
	IsDislikedByUser *bool `bson:"-" json:"is_disliked_by_user,omitempty"`
	IsAuthor         *bool `bson:"-" json:"is_author,omitempty"`
}
