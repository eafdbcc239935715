package interaction

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/apperr"
	"piazza/internal/models"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func livePost(owner bson.ObjectID) *models.Post {
	return &models.Post{
		ID:               bson.NewObjectID(),
		Title:            "t",
		Message:          "m",
		Topics:           []models.Topic{models.TopicTech},
		CreatedAt:        t0,
		ExpirationAt:     t0.Add(time.Minute),
		OwnerID:          owner,
		OwnerDisplayName: "owner",
		Reactions:        map[string]models.Reaction{},
	}
}

func step(t *testing.T, p *models.Post, req Request, now time.Time) *models.Post {
	t.Helper()
	m, err := Decide(p, req, now)
	require.NoError(t, err)
	return Apply(p, m)
}

func assertInvariants(t *testing.T, p *models.Post) {
	t.Helper()
	liked := p.Participants(models.ReactionLike)
	disliked := p.Participants(models.ReactionDislike)
	assert.Equal(t, len(liked), p.Count(models.ReactionLike))
	assert.Equal(t, len(disliked), p.Count(models.ReactionDislike))
	for _, id := range liked {
		assert.NotContains(t, disliked, id)
	}
	assert.NotContains(t, liked, p.OwnerID)
	assert.NotContains(t, disliked, p.OwnerID)
}

func TestLikeThenDislikeSwitches(t *testing.T) {
	owner, a := bson.NewObjectID(), bson.NewObjectID()
	p := livePost(owner)

	p = step(t, p, Request{Action: ActionLike, Actor: a}, t0)
	p = step(t, p, Request{Action: ActionDislike, Actor: a}, t0)

	assert.Contains(t, p.Participants(models.ReactionDislike), a)
	assert.NotContains(t, p.Participants(models.ReactionLike), a)
	assert.Equal(t, 1, p.Count(models.ReactionDislike))
	assert.Equal(t, 0, p.Count(models.ReactionLike))
}

func TestLikeDislikeLikeScenario(t *testing.T) {
	owner, b := bson.NewObjectID(), bson.NewObjectID()
	p := livePost(owner)

	p = step(t, p, Request{Action: ActionLike, Actor: b}, t0)
	assert.Equal(t, [2]int{1, 0}, [2]int{p.Count(models.ReactionLike), p.Count(models.ReactionDislike)})

	p = step(t, p, Request{Action: ActionDislike, Actor: b}, t0)
	assert.Equal(t, [2]int{0, 1}, [2]int{p.Count(models.ReactionLike), p.Count(models.ReactionDislike)})

	p = step(t, p, Request{Action: ActionLike, Actor: b}, t0)
	assert.Equal(t, [2]int{1, 0}, [2]int{p.Count(models.ReactionLike), p.Count(models.ReactionDislike)})
}

func TestLikeIsIdempotent(t *testing.T) {
	owner, a := bson.NewObjectID(), bson.NewObjectID()
	once := step(t, livePost(owner), Request{Action: ActionLike, Actor: a}, t0)

	m, err := Decide(once, Request{Action: ActionLike, Actor: a}, t0)
	require.NoError(t, err)
	assert.Equal(t, MutationNone, m.Kind)

	twice := Apply(once, m)
	assert.Equal(t, once, twice)
}

func TestOwnerCannotReact(t *testing.T) {
	owner := bson.NewObjectID()
	for _, now := range []time.Time{t0, t0.Add(time.Hour)} {
		for _, action := range []Action{ActionLike, ActionDislike} {
			_, err := Decide(livePost(owner), Request{Action: action, Actor: owner}, now)
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), "%s at %s", action, now)
		}
	}
}

func TestExpiredPostRejectsEveryAction(t *testing.T) {
	owner, a := bson.NewObjectID(), bson.NewObjectID()
	p := livePost(owner)
	expiry := p.ExpirationAt

	cases := []Request{
		{Action: ActionLike, Actor: a},
		{Action: ActionDislike, Actor: a},
		{Action: ActionComment, Actor: a, Text: "late"},
		{Action: ActionComment, Actor: owner, Text: "late"},
	}
	for _, req := range cases {
		for _, now := range []time.Time{expiry, expiry.Add(time.Second)} {
			_, err := Decide(p, req, now)
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), req.Action.String())
		}
	}
}

func TestCommentAllowedForOwnerAndOthers(t *testing.T) {
	owner, a := bson.NewObjectID(), bson.NewObjectID()
	p := livePost(owner)

	p = step(t, p, Request{Action: ActionComment, Actor: owner, ActorName: "owner", Text: "  first  "}, t0)
	p = step(t, p, Request{Action: ActionComment, Actor: a, ActorName: "alice", Text: "second"}, t0.Add(time.Second))

	require.Len(t, p.Comments, 2)
	assert.Equal(t, "first", p.Comments[0].Text)
	assert.Equal(t, owner, p.Comments[0].AuthorID)
	assert.Equal(t, "alice", p.Comments[1].AuthorDisplayName)
	assert.Empty(t, p.Reactions)
}

func TestEmptyCommentRejected(t *testing.T) {
	_, err := Decide(livePost(bson.NewObjectID()), Request{Action: ActionComment, Actor: bson.NewObjectID(), Text: " \t\n"}, t0)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestMissingPostIsNotFound(t *testing.T) {
	_, err := Decide(nil, Request{Action: ActionLike, Actor: bson.NewObjectID()}, t0)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	owner, a := bson.NewObjectID(), bson.NewObjectID()
	p := livePost(owner)
	next := step(t, p, Request{Action: ActionLike, Actor: a}, t0)

	assert.Empty(t, p.Reactions)
	assert.Equal(t, int64(0), p.Version)
	assert.Equal(t, int64(1), next.Version)
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	owner := bson.NewObjectID()
	actors := []bson.ObjectID{owner, bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()}
	p := livePost(owner)
	comments := 0

	for i := 0; i < 500; i++ {
		req := Request{
			Action: Action(rng.Intn(3) + 1),
			Actor:  actors[rng.Intn(len(actors))],
			Text:   "hi",
		}
		m, err := Decide(p, req, t0)
		if err != nil {
			require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
			require.Equal(t, owner, req.Actor)
			continue
		}
		if m.Kind == MutationComment {
			comments++
		}
		p = Apply(p, m)
		assertInvariants(t, p)
	}
	assert.Len(t, p.Comments, comments)
}
