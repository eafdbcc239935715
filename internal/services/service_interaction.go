package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/apperr"
	"piazza/internal/interaction"
	"piazza/internal/metrics"
	"piazza/internal/models"
	"piazza/internal/repository"
)

type InteractionService struct {
	posts PostRepository
	now   Clock
}

func NewInteractionService(posts PostRepository, now Clock) *InteractionService {
	return &InteractionService{posts: posts, now: now.orDefault()}
}

// Now is the instant responses should derive status from.
func (s *InteractionService) Now() time.Time { return s.now() }

func (s *InteractionService) Like(ctx context.Context, rawPostID string, actor *models.User) (*models.Post, error) {
	return s.interact(ctx, rawPostID, interaction.Request{Action: interaction.ActionLike, Actor: actor.ID, ActorName: actor.Username})
}

func (s *InteractionService) Dislike(ctx context.Context, rawPostID string, actor *models.User) (*models.Post, error) {
	return s.interact(ctx, rawPostID, interaction.Request{Action: interaction.ActionDislike, Actor: actor.ID, ActorName: actor.Username})
}

func (s *InteractionService) Comment(ctx context.Context, rawPostID string, actor *models.User, text string) (*models.Post, error) {
	return s.interact(ctx, rawPostID, interaction.Request{Action: interaction.ActionComment, Actor: actor.ID, ActorName: actor.Username, Text: text})
}

func (s *InteractionService) interact(ctx context.Context, rawPostID string, req interaction.Request) (*models.Post, error) {
	p, outcome, err := s.apply(ctx, rawPostID, req)
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.ObserveInteraction(req.Action.String(), outcome)
	return p, err
}

// apply is load, decide, commit. The commit is conditional; when its
// condition no longer holds the post is re-read and decided again so the
// caller gets the precise reason. Nothing is retried.
func (s *InteractionService) apply(ctx context.Context, rawPostID string, req interaction.Request) (*models.Post, string, error) {
	id, err := ParsePostID(rawPostID)
	if err != nil {
		return nil, "", err
	}
	if req.Action == interaction.ActionComment {
		if req.Text, err = interaction.NormalizeComment(req.Text); err != nil {
			return nil, "", err
		}
	}

	now := s.now()
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	m, err := interaction.Decide(current, req, now)
	if err != nil {
		return nil, "", err
	}
	if m.Kind == interaction.MutationNone {
		return current, "noop", nil
	}

	next, err := s.posts.Commit(ctx, id, m, now)
	if err == nil {
		return next, "applied", nil
	}
	if !errors.Is(err, repository.ErrConditionFailed) {
		return nil, "", apperr.Internal(err)
	}

	fresh, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if _, err := interaction.Decide(fresh, req, now); err != nil {
		return nil, "", err
	}
	return nil, "", apperr.Internal(errors.New("conditional commit rejected a valid interaction"))
}

// load returns a nil post, not an error, when the id is unknown so Decide
// reports NotFound.
func (s *InteractionService) load(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}
