package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"comment-service/models"
)

// MemoryStorage - in-memory storage, used for tests and the
// STORAGE_TYPE=in-memory dev mode. Implements CommentStore and UserStore.
type MemoryStorage struct {
	mu       sync.RWMutex
	comments map[primitive.ObjectID]*models.Comment
	users    map[primitive.ObjectID]*models.User
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		comments: make(map[primitive.ObjectID]*models.Comment),
		users:    make(map[primitive.ObjectID]*models.User),
	}
}

func cloneComment(c *models.Comment) *models.Comment {
	cp := *c
	cp.Replies = append([]primitive.ObjectID{}, c.Replies...)
	cp.Likes = append([]primitive.ObjectID{}, c.Likes...)
	cp.Dislikes = append([]primitive.ObjectID{}, c.Dislikes...)
	if c.ParentComment != nil {
		parent := *c.ParentComment
		cp.ParentComment = &parent
	}
	return &cp
}

func (s *MemoryStorage) Insert(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *MemoryStorage) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, exists := s.comments[id]
	if !exists {
		return nil, ErrNotFound
	}
	return cloneComment(comment), nil
}

// matches reports whether the comment belongs to the selection: same parent
// and, when an effective filter is set, at least one like/dislike.
func matches(c *models.Comment, criteria ListCriteria) bool {
	if criteria.ParentID == nil {
		if c.ParentComment != nil {
			return false
		}
	} else if c.ParentComment == nil || *c.ParentComment != *criteria.ParentID {
		return false
	}

	switch criteria.Filter {
	case FilterLiked:
		return len(c.Likes) > 0
	case FilterDisliked:
		return len(c.Dislikes) > 0
	}
	return true
}

func (s *MemoryStorage) selectComments(criteria ListCriteria) []*models.Comment {
	var matched []*models.Comment
	for _, c := range s.comments {
		if matches(c, criteria) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch criteria.Sort {
		case SortMostLiked:
			if len(a.Likes) != len(b.Likes) {
				return len(a.Likes) > len(b.Likes)
			}
			return a.CreatedAt.After(b.CreatedAt)
		case SortMostDisliked:
			if len(a.Dislikes) != len(b.Dislikes) {
				return len(a.Dislikes) > len(b.Dislikes)
			}
			return a.CreatedAt.After(b.CreatedAt)
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return matched
}

func (s *MemoryStorage) List(ctx context.Context, criteria ListCriteria) ([]models.CommentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.selectComments(criteria)

	start := criteria.Skip
	if start > int64(len(matched)) {
		start = int64(len(matched))
	}
	end := start + criteria.Limit
	if criteria.Limit <= 0 || end > int64(len(matched)) {
		end = int64(len(matched))
	}

	result := []models.CommentDetail{}
	for _, c := range matched[start:end] {
		result = append(result, s.detail(c))
	}
	return result, nil
}

func (s *MemoryStorage) Count(ctx context.Context, criteria ListCriteria) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, c := range s.comments {
		if matches(c, criteria) {
			total++
		}
	}
	return total, nil
}

func (s *MemoryStorage) FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.CommentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, exists := s.comments[id]
	if !exists {
		return nil, ErrNotFound
	}
	detail := s.detail(comment)
	return &detail, nil
}

// detail joins the author and the replies the way the Mongo pipeline does.
// Callers hold the lock.
func (s *MemoryStorage) detail(c *models.Comment) models.CommentDetail {
	d := models.CommentDetail{
		ID:            c.ID,
		Content:       c.Content,
		Author:        s.author(c.Author),
		ParentComment: c.ParentComment,
		Likes:         append([]primitive.ObjectID{}, c.Likes...),
		Dislikes:      append([]primitive.ObjectID{}, c.Dislikes...),
		Replies:       []models.ReplyDetail{},
		LikeCount:     len(c.Likes),
		DislikeCount:  len(c.Dislikes),
		ReplyCount:    len(c.Replies),
		IsEdited:      c.IsEdited,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for _, replyID := range c.Replies {
		reply, exists := s.comments[replyID]
		if !exists {
			continue
		}
		d.Replies = append(d.Replies, models.ReplyDetail{
			ID:           reply.ID,
			Content:      reply.Content,
			Author:       s.author(reply.Author),
			Likes:        append([]primitive.ObjectID{}, reply.Likes...),
			Dislikes:     append([]primitive.ObjectID{}, reply.Dislikes...),
			LikeCount:    len(reply.Likes),
			DislikeCount: len(reply.Dislikes),
			IsEdited:     reply.IsEdited,
			CreatedAt:    reply.CreatedAt,
			UpdatedAt:    reply.UpdatedAt,
		})
	}
	return d
}

func (s *MemoryStorage) author(id primitive.ObjectID) models.Author {
	if user, exists := s.users[id]; exists {
		return user.PublicAuthor()
	}
	return models.Author{ID: id}
}

func (s *MemoryStorage) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[id]
	if !exists {
		return ErrNotFound
	}
	comment.Content = content
	comment.IsEdited = true
	comment.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) SetReactions(ctx context.Context, id primitive.ObjectID, likes, dislikes []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[id]
	if !exists {
		return ErrNotFound
	}
	comment.Likes = append([]primitive.ObjectID{}, likes...)
	comment.Dislikes = append([]primitive.ObjectID{}, dislikes...)
	return nil
}

func (s *MemoryStorage) PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, exists := s.comments[parentID]
	if !exists {
		return ErrNotFound
	}
	parent.Replies = append(parent.Replies, replyID)
	return nil
}

func (s *MemoryStorage) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, exists := s.comments[parentID]
	if !exists {
		return ErrNotFound
	}
	replies := parent.Replies[:0]
	for _, id := range parent.Replies {
		if id != replyID {
			replies = append(replies, id)
		}
	}
	parent.Replies = replies
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.comments, id)
	return nil
}

func (s *MemoryStorage) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.comments, id)
	}
	return nil
}

func (s *MemoryStorage) InsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStorage) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryStorage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, user := range s.users {
		if user.Email == email {
			count++
		}
	}
	return count, nil
}
