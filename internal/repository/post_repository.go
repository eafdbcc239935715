package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"piazza/internal/interaction"
	"piazza/internal/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(PostsCollection)}
}

func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	// $set on reactions.<id> and $push on comments fail against null fields.
	if p.Reactions == nil {
		p.Reactions = map[string]models.Reaction{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// FindByTopic returns every post filed under topic, oldest first.
func (r *PostRepository) FindByTopic(ctx context.Context, topic models.Topic) ([]models.Post, error) {
	return r.find(ctx, bson.M{"topics": topic})
}

// FindExpiredByTopic returns posts whose expiration is at or before now.
func (r *PostRepository) FindExpiredByTopic(ctx context.Context, topic models.Topic, now time.Time) ([]models.Post, error) {
	return r.find(ctx, bson.M{"topics": topic, "expiration_at": bson.M{"$lte": now}})
}

func (r *PostRepository) FindLiveByTopic(ctx context.Context, topic models.Topic, now time.Time) ([]models.Post, error) {
	return r.find(ctx, bson.M{"topics": topic, "expiration_at": bson.M{"$gt": now}})
}

func (r *PostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// Commit applies m as one conditional FindOneAndUpdate and returns the post
// as written. The filter re-checks liveness (and ownership for reactions) so
// a post that expired after it was read is never modified. Each actor owns
// its own reactions.<id> key, so concurrent reactions from different actors
// never overwrite each other.
func (r *PostRepository) Commit(ctx context.Context, id bson.ObjectID, m interaction.Mutation, now time.Time) (*models.Post, error) {
	filter, update, ok := commitOps(id, m, now)
	if !ok {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("commit %s: %w", describe(m), err)
	}
	return &p, nil
}

// commitOps builds the conditional filter and update for m. ok is false for
// a mutation that writes nothing.
func commitOps(id bson.ObjectID, m interaction.Mutation, now time.Time) (filter, update bson.M, ok bool) {
	filter = bson.M{"_id": id, "expiration_at": bson.M{"$gt": now}}

	switch m.Kind {
	case interaction.MutationReact:
		filter["owner_id"] = bson.M{"$ne": m.Actor}
		update = bson.M{
			"$set": bson.M{"reactions." + m.Actor.Hex(): m.Reaction},
			"$inc": bson.M{"version": 1},
		}
	case interaction.MutationComment:
		update = bson.M{
			"$push": bson.M{"comments": m.Comment},
			"$inc":  bson.M{"version": 1},
		}
	default:
		return nil, nil, false
	}
	return filter, update, true
}

func describe(m interaction.Mutation) string {
	switch m.Kind {
	case interaction.MutationReact:
		return "reaction " + string(m.Reaction)
	case interaction.MutationComment:
		return "comment"
	}
	return "noop"
}
