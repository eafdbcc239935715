package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/apperr"
	"piazza/internal/models"
	"piazza/internal/repository"
)

const (
	msgMissingFields  = "missing required fields"
	msgInvalidTopic   = "invalid topic"
	msgInvalidTopics  = "invalid topic(s)"
	msgBadMinutes     = "expirationMinutes must be a positive number"
	msgInvalidPostID  = "invalid post id"
	msgNoActivePosts  = "no active posts for this topic"
	maxExpiryDuration = 100 * 365 * 24 * time.Hour
)

type CreatePostInput struct {
	Title             string
	Message           string
	Topics            []string
	ExpirationMinutes float64
}

type PostService struct {
	posts PostRepository
	now   Clock
}

func NewPostService(posts PostRepository, now Clock) *PostService {
	return &PostService{posts: posts, now: now.orDefault()}
}

// Now is the instant responses should derive status from.
func (s *PostService) Now() time.Time { return s.now() }

// parseTopics rejects the whole set when any entry is outside the enumeration.
func parseTopics(raw []string) ([]models.Topic, error) {
	if len(raw) == 0 {
		return nil, apperr.InvalidArgument(msgMissingFields)
	}
	out := make([]models.Topic, 0, len(raw))
	seen := map[models.Topic]bool{}
	for _, r := range raw {
		t, ok := models.ParseTopic(strings.TrimSpace(r))
		if !ok {
			return nil, apperr.InvalidArgument(msgInvalidTopics)
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func expiryFor(minutes float64) (time.Duration, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0, apperr.InvalidArgument(msgBadMinutes)
	}
	d := time.Duration(minutes * float64(time.Minute))
	if d <= 0 || d > maxExpiryDuration {
		return 0, apperr.InvalidArgument(msgBadMinutes)
	}
	return d, nil
}

func (s *PostService) Create(ctx context.Context, owner *models.User, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, apperr.InvalidArgument(msgMissingFields)
	}
	topics, err := parseTopics(in.Topics)
	if err != nil {
		return nil, err
	}
	ttl, err := expiryFor(in.ExpirationMinutes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Post{
		ID:               bson.NewObjectID(),
		Title:            title,
		Message:          message,
		Topics:           topics,
		CreatedAt:        now,
		ExpirationAt:     now.Add(ttl),
		OwnerID:          owner.ID,
		OwnerDisplayName: owner.Username,
		Reactions:        map[string]models.Reaction{},
		Comments:         []models.Comment{},
	}
	if err := s.posts.Insert(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func ParsePostID(raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return bson.NilObjectID, apperr.InvalidArgument(msgInvalidPostID)
	}
	return id, nil
}

func (s *PostService) Get(ctx context.Context, rawID string) (*models.Post, error) {
	id, err := ParsePostID(rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func topicParam(raw string) (models.Topic, error) {
	t, ok := models.ParseTopic(raw)
	if !ok {
		return "", apperr.InvalidArgument(msgInvalidTopic)
	}
	return t, nil
}

// ListByTopic filters on the derived status after loading; any status other
// than Live or Expired means no filter.
func (s *PostService) ListByTopic(ctx context.Context, rawTopic, status string) ([]models.Post, error) {
	topic, err := topicParam(rawTopic)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.FindByTopic(ctx, topic)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	want := models.Status(status)
	if want != models.StatusLive && want != models.StatusExpired {
		return posts, nil
	}
	now := s.now()
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if posts[i].StatusAt(now) == want {
			out = append(out, posts[i])
		}
	}
	return out, nil
}

func (s *PostService) ListExpired(ctx context.Context, rawTopic string) ([]models.Post, error) {
	topic, err := topicParam(rawTopic)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.FindExpiredByTopic(ctx, topic, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return posts, nil
}

// HighestInterest picks the live post with the most likes plus dislikes; the
// earliest created post wins a tie.
func (s *PostService) HighestInterest(ctx context.Context, rawTopic string) (*models.Post, error) {
	topic, err := topicParam(rawTopic)
	if err != nil {
		return nil, err
	}
	now := s.now()
	posts, err := s.posts.FindLiveByTopic(ctx, topic, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var best *models.Post
	for i := range posts {
		p := &posts[i]
		if p.StatusAt(now) != models.StatusLive {
			continue
		}
		if best == nil || p.Interest() > best.Interest() {
			best = p
		}
	}
	if best == nil {
		return nil, apperr.NotFound(msgNoActivePosts)
	}
	return best, nil
}
