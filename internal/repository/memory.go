package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/interaction"
	"piazza/internal/models"
)

// MemoryUserRepository keeps users in process. Selected with STORE_DRIVER=memory.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[bson.ObjectID]models.User
	byName map[string]bson.ObjectID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   map[bson.ObjectID]models.User{},
		byName: map[string]bson.ObjectID{},
	}
}

func (r *MemoryUserRepository) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[u.Username]; taken {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	r.byID[u.ID] = *u
	r.byName[u.Username] = u.ID
	return nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// Delete exists for tests that need a token whose user has vanished.
func (r *MemoryUserRepository) Delete(id bson.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byName, u.Username)
		delete(r.byID, id)
	}
}

// MemoryPostRepository mirrors PostRepository's conditional commits under a
// single mutex.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[bson.ObjectID]*models.Post
	order []bson.ObjectID
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: map[bson.ObjectID]*models.Post{}}
}

func (r *MemoryPostRepository) Insert(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Reactions == nil {
		p.Reactions = map[string]models.Reaction{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	r.posts[p.ID] = p.Clone()
	r.order = append(r.order, p.ID)
	return nil
}

func (r *MemoryPostRepository) FindByID(_ context.Context, id bson.ObjectID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryPostRepository) FindByTopic(_ context.Context, topic models.Topic) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.HasTopic(topic) }), nil
}

func (r *MemoryPostRepository) FindExpiredByTopic(_ context.Context, topic models.Topic, now time.Time) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		return p.HasTopic(topic) && !p.ExpirationAt.After(now)
	}), nil
}

func (r *MemoryPostRepository) FindLiveByTopic(_ context.Context, topic models.Topic, now time.Time) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		return p.HasTopic(topic) && p.ExpirationAt.After(now)
	}), nil
}

func (r *MemoryPostRepository) filter(keep func(*models.Post) bool) []models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Post{}
	for _, id := range r.order {
		if p := r.posts[id]; keep(p) {
			out = append(out, *p.Clone())
		}
	}
	// Insertion order breaks ties, standing in for the _id tiebreak in Mongo.
	slices.SortStableFunc(out, func(a, b models.Post) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func (r *MemoryPostRepository) Commit(_ context.Context, id bson.ObjectID, m interaction.Mutation, now time.Time) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || !p.ExpirationAt.After(now) {
		return nil, ErrConditionFailed
	}
	if m.Kind == interaction.MutationReact && p.OwnerID == m.Actor {
		return nil, ErrConditionFailed
	}
	next := interaction.Apply(p, m)
	r.posts[id] = next
	return next.Clone(), nil
}
