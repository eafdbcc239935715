package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConditionFailed means a conditional write matched no document: the
	// post is gone, expired, or the actor is its owner.
	ErrConditionFailed = errors.New("write condition not met")
)

func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 && we.WriteErrors[0].Code == 11000 {
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}
