package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/interaction"
	"piazza/internal/models"
)

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

type PostRepository interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error)
	FindByTopic(ctx context.Context, topic models.Topic) ([]models.Post, error)
	FindExpiredByTopic(ctx context.Context, topic models.Topic, now time.Time) ([]models.Post, error)
	FindLiveByTopic(ctx context.Context, topic models.Topic, now time.Time) ([]models.Post, error)
	Commit(ctx context.Context, id bson.ObjectID, m interaction.Mutation, now time.Time) (*models.Post, error)
}

// Clock is the time source services evaluate expiry against.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}
