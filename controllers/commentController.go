package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"comment-service/services"
)

var validSortOptions = map[string]bool{
	"newest": true, "oldest": true,
	"mostliked": true, "most-liked": true,
	"mostdisliked": true, "most-disliked": true,
}

var validFilterOptions = map[string]bool{
	"": true, "liked": true, "disliked": true,
}

type CommentController struct {
	service *services.CommentService
}

func NewCommentController(service *services.CommentService) *CommentController {
	return &CommentController{service: service}
}

// currentUserID returns the viewer id set by the auth middleware, or nil for
// anonymous requests.
func currentUserID(c *gin.Context) *primitive.ObjectID {
	value, exists := c.Get("userId")
	if !exists {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(value.(string))
	if err != nil {
		return nil
	}
	return &id
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func normalizeQueryValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// respondServiceError maps domain errors to HTTP statuses; anything else is
// an infrastructure failure.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCommentNotFound), errors.Is(err, services.ErrParentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrEmptyContent), errors.Is(err, services.ErrContentTooLong), errors.Is(err, services.ErrNestedReply):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}

// GetComments godoc
// @Summary      list comments with pagination, sorting and filtering
// @Description  Top-level comments by default; pass parentId to list a thread's replies. Sorting by mostLiked/mostDisliked without an explicit filter only returns comments that have such reactions.
// @Tags         Comments
// @Produce      json
// @Param        page     query  int     false  "Page (default 1)"
// @Param        limit    query  int     false  "Page size (1-100, default 10)"
// @Param        sortBy   query  string  false  "newest | oldest | mostLiked | mostDisliked"
// @Param        filter   query  string  false  "liked | disliked"
// @Param        parentId query  string  false  "Parent comment ID"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /comments [get]
func (ctrl *CommentController) GetComments(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Page must be a positive integer"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Limit must be between 1 and 100"})
		return
	}

	sortBy := c.DefaultQuery("sortBy", "newest")
	if !validSortOptions[normalizeQueryValue(sortBy)] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid sort option"})
		return
	}
	filter := c.Query("filter")
	if !validFilterOptions[normalizeQueryValue(filter)] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid filter option"})
		return
	}

	var parentID *primitive.ObjectID
	if raw := c.Query("parentId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid parent comment ID"})
			return
		}
		parentID = &id
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ctrl.service.ListComments(ctx, services.ListParams{
		Page:     page,
		Limit:    limit,
		SortBy:   sortBy,
		Filter:   filter,
		ParentID: parentID,
		ViewerID: currentUserID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(result.Comments),
		"total":   result.Total,
		"page":    result.Page,
		"pages":   result.Pages,
		"data":    result.Comments,
	})
}

// GetComment godoc
// @Summary      get a single comment by ID
// @Description  Fetch one comment with its author and all replies populated.
// @Tags         Comments
// @Produce      json
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /comments/{id} [get]
func (ctrl *CommentController) GetComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := ctrl.service.GetComment(ctx, id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comment,
	})
}

// CreateComment godoc
// @Summary      create a new comment
// @Description  Add a top-level comment, or a reply when parent_comment is provided.
// @Tags         Comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        comment  body      object  true  "Comment Input (content, parent_comment)"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /comments [post]
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	var input struct {
		Content       string `json:"content" binding:"required"`
		ParentComment string `json:"parent_comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var parentID *primitive.ObjectID
	if input.ParentComment != "" {
		id, err := primitive.ObjectIDFromHex(input.ParentComment)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid parent comment ID"})
			return
		}
		parentID = &id
	}

	authorID := currentUserID(c)
	if authorID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := ctrl.service.CreateComment(ctx, input.Content, parentID, *authorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Comment created successfully",
		"data":    comment,
	})
}

// UpdateComment godoc
// @Summary      update a comment
// @Description  Logged-in users can only modify the content of their own comments.
// @Tags         Comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Comment ID"
// @Param        content  body      object  true  "Updated Content"
// @Success      200      {object}  map[string]interface{}
// @Failure      403      {object}  map[string]interface{}
// @Router       /comments/{id} [put]
func (ctrl *CommentController) UpdateComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	requesterID := currentUserID(c)
	if requesterID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := ctrl.service.UpdateComment(ctx, id, input.Content, *requesterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comment updated successfully",
		"data":    comment,
	})
}

// DeleteComment godoc
// @Summary      delete a comment
// @Description  Deletes the comment, all of its replies, and detaches it from its parent. Only the author can delete.
// @Tags         Comments
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /comments/{id} [delete]
func (ctrl *CommentController) DeleteComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	requesterID := currentUserID(c)
	if requesterID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ctrl.service.DeleteComment(ctx, id, *requesterID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comment deleted successfully",
		"data":    gin.H{},
	})
}

// LikeComment godoc
// @Summary      like a comment
// @Description  Toggles the requester's like. Liking a disliked comment removes the dislike.
// @Tags         Comments
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /comments/{id}/like [post]
func (ctrl *CommentController) LikeComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	userID := currentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ctrl.service.LikeComment(ctx, id, *userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Comment liked"
	if result.Removed {
		message = "Like removed"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    result,
	})
}

// DislikeComment godoc
// @Summary      dislike a comment
// @Description  Toggles the requester's dislike. Disliking a liked comment removes the like.
// @Tags         Comments
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /comments/{id}/dislike [post]
func (ctrl *CommentController) DislikeComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	userID := currentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := ctrl.service.DislikeComment(ctx, id, *userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Comment disliked"
	if result.Removed {
		message = "Dislike removed"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    result,
	})
}

// ReplyToComment godoc
// @Summary      reply to a comment
// @Description  Creates a reply under a top-level comment. Replies to replies are rejected.
// @Tags         Comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id     path      string  true  "Parent Comment ID"
// @Param        reply  body      object  true  "Reply Input (content)"
// @Success      201    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Router       /comments/{id}/reply [post]
func (ctrl *CommentController) ReplyToComment(c *gin.Context) {
	parentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid Comment ID"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	authorID := currentUserID(c)
	if authorID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	reply, err := ctrl.service.ReplyToComment(ctx, parentID, input.Content, *authorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Reply posted successfully",
		"data":    reply,
	})
}
