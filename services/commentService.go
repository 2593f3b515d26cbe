package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"comment-service/models"
	"comment-service/storage"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrEmptyContent    = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment must be between 1 and 1000 characters")
	ErrNestedReply     = errors.New("cannot reply to a reply")
)

const maxContentLength = 1000

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// CommentService holds the query and mutation logic for comments. Every
// mutation emits one best-effort notification after the store write succeeds.
type CommentService struct {
	comments storage.CommentStore
	users    storage.UserStore
	notifier Notifier
}

func NewCommentService(comments storage.CommentStore, users storage.UserStore, notifier Notifier) *CommentService {
	return &CommentService{comments: comments, users: users, notifier: notifier}
}

// ListParams are the raw listing parameters as they arrive from the boundary.
type ListParams struct {
	Page     int64
	Limit    int64
	SortBy   string
	Filter   string
	ParentID *primitive.ObjectID
	ViewerID *primitive.ObjectID
}

// CommentPage is one page of results plus the total across all pages,
// counted with the same selection and filter.
type CommentPage struct {
	Comments []models.CommentDetail `json:"comments"`
	Total    int64                  `json:"total"`
	Page     int64                  `json:"page"`
	Pages    int64                  `json:"pages"`
}

// ToggleResult carries the comment after a like/dislike toggle together with
// the recomputed counts.
type ToggleResult struct {
	Comment      *models.Comment `json:"comment"`
	LikeCount    int             `json:"like_count"`
	DislikeCount int             `json:"dislike_count"`

	// Removed is true when the toggle removed an existing reaction.
	Removed bool `json:"-"`
}

func normalizeSort(sortBy string) string {
	switch strings.ToLower(sortBy) {
	case "mostliked", "most-liked":
		return storage.SortMostLiked
	case "mostdisliked", "most-disliked":
		return storage.SortMostDisliked
	case "oldest":
		return storage.SortOldest
	default:
		return storage.SortNewest
	}
}

// resolveEffectiveFilter applies the sort-implies-filter compatibility rule:
// sorting by mostLiked/mostDisliked without an explicit filter restricts the
// listing to comments that have at least one such reaction. An explicit
// filter always wins over the implied one.
func resolveEffectiveFilter(filter, sortBy string) string {
	switch strings.ToLower(filter) {
	case storage.FilterLiked:
		return storage.FilterLiked
	case storage.FilterDisliked:
		return storage.FilterDisliked
	}
	switch normalizeSort(sortBy) {
	case storage.SortMostLiked:
		return storage.FilterLiked
	case storage.SortMostDisliked:
		return storage.FilterDisliked
	}
	return storage.FilterNone
}

// ListComments returns one page of comments sharing params.ParentID (nil for
// the top level), each with author, all replies and counts embedded.
func (s *CommentService) ListComments(ctx context.Context, params ListParams) (*CommentPage, error) {
	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	criteria := storage.ListCriteria{
		ParentID: params.ParentID,
		Filter:   resolveEffectiveFilter(params.Filter, params.SortBy),
		Sort:     normalizeSort(params.SortBy),
		Skip:     (page - 1) * limit,
		Limit:    limit,
	}

	comments, err := s.comments.List(ctx, criteria)
	if err != nil {
		return nil, err
	}

	// Total is computed against the same selection, independent of pagination.
	total, err := s.comments.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if params.ViewerID != nil {
		for i := range comments {
			annotateViewer(&comments[i], *params.ViewerID)
		}
	}

	var pages int64
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return &CommentPage{Comments: comments, Total: total, Page: page, Pages: pages}, nil
}

// GetComment fetches one comment with author and replies populated.
func (s *CommentService) GetComment(ctx context.Context, id primitive.ObjectID, viewerID *primitive.ObjectID) (*models.CommentDetail, error) {
	comment, err := s.comments.FindDetailByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		annotateViewer(comment, *viewerID)
	}
	return comment, nil
}

// CreateComment creates a top-level comment, or a reply when parentID is set.
func (s *CommentService) CreateComment(ctx context.Context, content string, parentID *primitive.ObjectID, authorID primitive.ObjectID) (*models.CommentDetail, error) {
	detail, err := s.create(ctx, content, parentID, authorID)
	if err != nil {
		return nil, err
	}

	s.notify(EventCommentCreated, map[string]interface{}{
		"comment":        detail,
		"parent_comment": parentID,
	})
	return detail, nil
}

// ReplyToComment creates a reply under an existing top-level comment.
func (s *CommentService) ReplyToComment(ctx context.Context, parentID primitive.ObjectID, content string, authorID primitive.ObjectID) (*models.CommentDetail, error) {
	detail, err := s.create(ctx, content, &parentID, authorID)
	if err != nil {
		return nil, err
	}

	s.notify(EventCommentReply, map[string]interface{}{
		"reply":             detail,
		"parent_comment_id": parentID.Hex(),
	})
	return detail, nil
}

func (s *CommentService) create(ctx context.Context, content string, parentID *primitive.ObjectID, authorID primitive.ObjectID) (*models.CommentDetail, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
		// Nesting stops at one level: a reply never becomes a parent.
		if parent.ParentComment != nil {
			return nil, ErrNestedReply
		}
	}

	now := time.Now()
	comment := &models.Comment{
		ID:            primitive.NewObjectID(),
		Content:       content,
		Author:        authorID,
		ParentComment: parentID,
		Replies:       []primitive.ObjectID{},
		Likes:         []primitive.ObjectID{},
		Dislikes:      []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, err
	}
	if parentID != nil {
		if err := s.comments.PushReply(ctx, *parentID, comment.ID); err != nil {
			return nil, err
		}
	}

	return s.resolveAuthor(ctx, comment)
}

// UpdateComment edits the content of the requester's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, id primitive.ObjectID, content string, requesterID primitive.ObjectID) (*models.CommentDetail, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if comment.Author != requesterID {
		return nil, ErrNotAuthorized
	}

	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}

	detail, err := s.comments.FindDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify(EventCommentUpdated, map[string]interface{}{
		"comment": detail,
	})
	return detail, nil
}

// DeleteComment removes the requester's own comment, cascades over its
// replies and detaches it from its parent. The three store writes run
// sequentially with no transaction; a failure mid-way is surfaced after the
// already committed steps.
func (s *CommentService) DeleteComment(ctx context.Context, id primitive.ObjectID, requesterID primitive.ObjectID) error {
	comment, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if comment.Author != requesterID {
		return ErrNotAuthorized
	}

	if comment.ParentComment != nil {
		if err := s.comments.PullReply(ctx, *comment.ParentComment, comment.ID); err != nil {
			return err
		}
	}
	if len(comment.Replies) > 0 {
		if err := s.comments.DeleteMany(ctx, comment.Replies); err != nil {
			return err
		}
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(EventCommentDeleted, map[string]interface{}{
		"comment_id": id.Hex(),
	})
	return nil
}

// LikeComment toggles the user's like: neutral->liked, liked->neutral, and
// disliked->liked in a single transition. Likes and dislikes stay mutually
// exclusive per user.
func (s *CommentService) LikeComment(ctx context.Context, id, userID primitive.ObjectID) (*ToggleResult, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	alreadyLiked := containsID(comment.Likes, userID)
	if alreadyLiked {
		comment.Likes = removeID(comment.Likes, userID)
	} else {
		comment.Dislikes = removeID(comment.Dislikes, userID)
		comment.Likes = append(comment.Likes, userID)
	}

	if err := s.comments.SetReactions(ctx, id, comment.Likes, comment.Dislikes); err != nil {
		return nil, err
	}

	s.notify(EventCommentLiked, map[string]interface{}{
		"comment_id":    id.Hex(),
		"like_count":    len(comment.Likes),
		"dislike_count": len(comment.Dislikes),
	})
	return &ToggleResult{
		Comment:      comment,
		LikeCount:    len(comment.Likes),
		DislikeCount: len(comment.Dislikes),
		Removed:      alreadyLiked,
	}, nil
}

// DislikeComment is the symmetric toggle.
func (s *CommentService) DislikeComment(ctx context.Context, id, userID primitive.ObjectID) (*ToggleResult, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	alreadyDisliked := containsID(comment.Dislikes, userID)
	if alreadyDisliked {
		comment.Dislikes = removeID(comment.Dislikes, userID)
	} else {
		comment.Likes = removeID(comment.Likes, userID)
		comment.Dislikes = append(comment.Dislikes, userID)
	}

	if err := s.comments.SetReactions(ctx, id, comment.Likes, comment.Dislikes); err != nil {
		return nil, err
	}

	s.notify(EventCommentDisliked, map[string]interface{}{
		"comment_id":    id.Hex(),
		"like_count":    len(comment.Likes),
		"dislike_count": len(comment.Dislikes),
	})
	return &ToggleResult{
		Comment:      comment,
		LikeCount:    len(comment.Likes),
		DislikeCount: len(comment.Dislikes),
		Removed:      alreadyDisliked,
	}, nil
}

// notify publishes one event; failures are logged and never reach the caller.
func (s *CommentService) notify(event string, payload interface{}) {
	if err := s.notifier.Publish(NotificationChannel, event, payload); err != nil {
		log.Println("Pusher error:", err)
	}
}

func (s *CommentService) resolveAuthor(ctx context.Context, comment *models.Comment) (*models.CommentDetail, error) {
	author, err := s.users.FindUserByID(ctx, comment.Author)
	if err != nil {
		return nil, err
	}
	return &models.CommentDetail{
		ID:            comment.ID,
		Content:       comment.Content,
		Author:        author.PublicAuthor(),
		ParentComment: comment.ParentComment,
		Likes:         comment.Likes,
		Dislikes:      comment.Dislikes,
		Replies:       []models.ReplyDetail{},
		IsEdited:      comment.IsEdited,
		CreatedAt:     comment.CreatedAt,
		UpdatedAt:     comment.UpdatedAt,
	}, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func annotateViewer(comment *models.CommentDetail, viewerID primitive.ObjectID) {
	liked := containsID(comment.Likes, viewerID)
	disliked := containsID(comment.Dislikes, viewerID)
	isAuthor := comment.Author.ID == viewerID
	comment.IsLikedByUser = &liked
	comment.IsDislikedByUser = &disliked
	comment.IsAuthor = &isAuthor
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	result := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			result = append(result, candidate)
		}
	}
	return result
}
