package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"comment-service/models"
)

// MongoCommentStore persists comments in the "comments" collection and joins
// authors from "users" through aggregation lookups.
type MongoCommentStore struct {
	coll *mongo.Collection
}

func NewMongoCommentStore(db *mongo.Database) *MongoCommentStore {
	return &MongoCommentStore{coll: db.Collection("comments")}
}

func (s *MongoCommentStore) Insert(ctx context.Context, comment *models.Comment) error {
	_, err := s.coll.InsertOne(ctx, comment)
	if err != nil {
		log.Println("DB Insert Error:", err)
	}
	return err
}

func (s *MongoCommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// matchStage builds the selection shared by List and Count: same parent,
// restricted by the effective filter.
func matchStage(parentID *primitive.ObjectID, filter string) bson.D {
	match := bson.D{{Key: "parent_comment", Value: parentID}}
	switch filter {
	case FilterLiked:
		match = append(match, bson.E{Key: "$expr", Value: bson.D{
			{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$likes"}}, 0}},
		}})
	case FilterDisliked:
		match = append(match, bson.E{Key: "$expr", Value: bson.D{
			{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$dislikes"}}, 0}},
		}})
	}
	return match
}

func sortStage(sortBy string) bson.D {
	switch sortBy {
	case SortMostLiked:
		return bson.D{{Key: "like_count", Value: -1}, {Key: "created_at", Value: -1}}
	case SortMostDisliked:
		return bson.D{{Key: "dislike_count", Value: -1}, {Key: "created_at", Value: -1}}
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// detailStages resolves the author, embeds every reply with its own author
// resolved, and projects the response shape. Appended after selection and
// pagination so the lookups only run for the page being returned.
func detailStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: "$author"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "comments"},
			{Key: "localField", Value: "replies"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "replies"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "replies.author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "reply_authors"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "replies", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: "$replies"},
				{Key: "as", Value: "reply"},
				{Key: "in", Value: bson.D{
					{Key: "_id", Value: "$$reply._id"},
					{Key: "content", Value: "$$reply.content"},
					{Key: "author", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{
						bson.D{{Key: "$filter", Value: bson.D{
							{Key: "input", Value: "$reply_authors"},
							{Key: "as", Value: "ra"},
							{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$ra._id", "$$reply.author"}}}},
						}}},
						0,
					}}}},
					{Key: "likes", Value: "$$reply.likes"},
					{Key: "dislikes", Value: "$$reply.dislikes"},
					{Key: "like_count", Value: bson.D{{Key: "$size", Value: "$$reply.likes"}}},
					{Key: "dislike_count", Value: bson.D{{Key: "$size", Value: "$$reply.dislikes"}}},
					{Key: "is_edited", Value: "$$reply.is_edited"},
					{Key: "created_at", Value: "$$reply.created_at"},
					{Key: "updated_at", Value: "$$reply.updated_at"},
				}},
			}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "content", Value: 1},
			{Key: "author", Value: bson.D{
				{Key: "_id", Value: 1},
				{Key: "name", Value: 1},
				{Key: "email", Value: 1},
			}},
			{Key: "parent_comment", Value: 1},
			{Key: "likes", Value: 1},
			{Key: "dislikes", Value: 1},
			{Key: "replies", Value: 1},
			{Key: "like_count", Value: 1},
			{Key: "dislike_count", Value: 1},
			{Key: "reply_count", Value: 1},
			{Key: "is_edited", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "updated_at", Value: 1},
		}}},
	}
}

func (s *MongoCommentStore) List(ctx context.Context, criteria ListCriteria) ([]models.CommentDetail, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: matchStage(criteria.ParentID, criteria.Filter)}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "like_count", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "dislike_count", Value: bson.D{{Key: "$size", Value: "$dislikes"}}},
			{Key: "reply_count", Value: bson.D{{Key: "$size", Value: "$replies"}}},
		}}},
		bson.D{{Key: "$sort", Value: sortStage(criteria.Sort)}},
		bson.D{{Key: "$skip", Value: criteria.Skip}},
		bson.D{{Key: "$limit", Value: criteria.Limit}},
	}
	pipeline = append(pipeline, detailStages()...)

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Println("Error aggregating comments:", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.CommentDetail{}
	if err := cursor.All(ctx, &comments); err != nil {
		log.Println("Error decoding comments:", err)
		return nil, err
	}
	return comments, nil
}

func (s *MongoCommentStore) Count(ctx context.Context, criteria ListCriteria) (int64, error) {
	return s.coll.CountDocuments(ctx, matchStage(criteria.ParentID, criteria.Filter))
}

func (s *MongoCommentStore) FindDetailByID(ctx context.Context, id primitive.ObjectID) (*models.CommentDetail, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "like_count", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "dislike_count", Value: bson.D{{Key: "$size", Value: "$dislikes"}}},
			{Key: "reply_count", Value: bson.D{{Key: "$size", Value: "$replies"}}},
		}}},
	}
	pipeline = append(pipeline, detailStages()...)

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.CommentDetail
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return &comments[0], nil
}

func (s *MongoCommentStore) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"content":    content,
		"is_edited":  true,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCommentStore) SetReactions(ctx context.Context, id primitive.ObjectID, likes, dislikes []primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"likes":    likes,
		"dislikes": dislikes,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCommentStore) PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, parentID, bson.M{"$push": bson.M{"replies": replyID}})
	return err
}

func (s *MongoCommentStore) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, parentID, bson.M{"$pull": bson.M{"replies": replyID}})
	return err
}

func (s *MongoCommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoCommentStore) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// MongoUserStore persists users in the "users" collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection("users")}
}

func (s *MongoUserStore) InsertUser(ctx context.Context, user *models.User) error {
	_, err := s.coll.InsertOne(ctx, user)
	return err
}

func (s *MongoUserStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"email": email})
}
