package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"piazza/internal/apperr"
	"piazza/internal/auth"
	"piazza/internal/interaction"
	"piazza/internal/models"
	"piazza/internal/repository"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *testClock {
	return &testClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}

type fixture struct {
	clock        *testClock
	users        *repository.MemoryUserRepository
	posts        *repository.MemoryPostRepository
	auth         *AuthService
	postSvc      *PostService
	interactions *InteractionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := newClock()
	users := repository.NewMemoryUserRepository()
	posts := repository.NewMemoryPostRepository()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour).WithClock(clk.Now)
	return &fixture{
		clock:        clk,
		users:        users,
		posts:        posts,
		auth:         NewAuthService(users, issuer, clk.Now).WithHashCost(bcrypt.MinCost),
		postSvc:      NewPostService(posts, clk.Now),
		interactions: NewInteractionService(posts, clk.Now),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, "pw-"+name)
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, owner *models.User, minutes float64, topics ...string) *models.Post {
	t.Helper()
	p, err := f.postSvc.Create(context.Background(), owner, CreatePostInput{
		Title: "title", Message: "message", Topics: topics, ExpirationMinutes: minutes,
	})
	require.NoError(t, err)
	return p
}

func kind(err error) apperr.Kind { return apperr.KindOf(err) }

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "  alice ", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "wonderland", u.PasswordHash)

	_, err = f.auth.Register(ctx, "alice", "again")
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))

	_, err = f.auth.Register(ctx, "", "x")
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))

	token, got, err := f.auth.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	viewer, err := f.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", viewer.Username)

	_, _, err = f.auth.Login(ctx, "alice", "wrong")
	assert.Equal(t, apperr.KindUnauthorized, kind(err))
	_, _, err = f.auth.Login(ctx, "nobody", "wonderland")
	assert.Equal(t, apperr.KindUnauthorized, kind(err))
}

func TestAuthenticateRejectsExpiredTokenAndDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "bob")

	token, _, err := f.auth.Login(ctx, "bob", "pw-bob")
	require.NoError(t, err)

	f.clock.Advance(61 * time.Minute)
	_, err = f.auth.Authenticate(ctx, token)
	assert.Equal(t, apperr.KindUnauthorized, kind(err))

	token, _, err = f.auth.Login(ctx, "bob", "pw-bob")
	require.NoError(t, err)
	f.users.Delete(u.ID)
	_, err = f.auth.Authenticate(ctx, token)
	assert.Equal(t, apperr.KindUnauthorized, kind(err))
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "olga")

	cases := []struct {
		name string
		in   CreatePostInput
	}{
		{"blank title", CreatePostInput{Title: " ", Message: "m", Topics: []string{"Tech"}, ExpirationMinutes: 1}},
		{"no topics", CreatePostInput{Title: "t", Message: "m", ExpirationMinutes: 1}},
		{"one bad topic", CreatePostInput{Title: "t", Message: "m", Topics: []string{"Tech", "Science"}, ExpirationMinutes: 1}},
		{"zero minutes", CreatePostInput{Title: "t", Message: "m", Topics: []string{"Tech"}}},
		{"negative minutes", CreatePostInput{Title: "t", Message: "m", Topics: []string{"Tech"}, ExpirationMinutes: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.postSvc.Create(context.Background(), owner, tc.in)
			assert.Equal(t, apperr.KindInvalidArgument, kind(err))
		})
	}
}

func TestCreatePostSnapshotsOwnerAndExpiry(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "olga")

	p := f.post(t, owner, 1.5, "Tech", "Health", "Tech")

	assert.Equal(t, []models.Topic{models.TopicTech, models.TopicHealth}, p.Topics)
	assert.Equal(t, "olga", p.OwnerDisplayName)
	assert.Equal(t, owner.ID, p.OwnerID)
	assert.Equal(t, f.clock.Now().Add(90*time.Second), p.ExpirationAt)
	assert.Equal(t, models.StatusLive, p.StatusAt(f.clock.Now()))
}

func TestInteractionScenarioExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, b, c := f.user(t, "a"), f.user(t, "b"), f.user(t, "c")
	p := f.post(t, owner, 1, "Tech")

	got, err := f.interactions.Like(ctx, p.ID.Hex(), b)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count(models.ReactionLike))

	f.clock.Advance(61 * time.Second)
	_, err = f.interactions.Like(ctx, p.ID.Hex(), c)
	assert.Equal(t, apperr.KindConflict, kind(err))
	_, err = f.interactions.Comment(ctx, p.ID.Hex(), owner, "too late")
	assert.Equal(t, apperr.KindConflict, kind(err))
}

func TestInteractionSwitchingAndIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, b := f.user(t, "a"), f.user(t, "b")
	id := f.post(t, owner, 10, "Sport").ID.Hex()

	counts := func(p *models.Post) [2]int {
		return [2]int{p.Count(models.ReactionLike), p.Count(models.ReactionDislike)}
	}

	p, err := f.interactions.Like(ctx, id, b)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, counts(p))

	p, err = f.interactions.Like(ctx, id, b)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, counts(p))
	assert.Equal(t, int64(1), p.Version, "second like must not write")

	p, err = f.interactions.Dislike(ctx, id, b)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 1}, counts(p))

	p, err = f.interactions.Like(ctx, id, b)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, counts(p))
}

func TestInteractionPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, b := f.user(t, "a"), f.user(t, "b")
	id := f.post(t, owner, 10, "Politics").ID.Hex()

	_, err := f.interactions.Like(ctx, id, owner)
	assert.Equal(t, apperr.KindForbidden, kind(err))
	_, err = f.interactions.Dislike(ctx, id, owner)
	assert.Equal(t, apperr.KindForbidden, kind(err))

	_, err = f.interactions.Like(ctx, "not-hex", b)
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))
	_, err = f.interactions.Like(ctx, bson.NewObjectID().Hex(), b)
	assert.Equal(t, apperr.KindNotFound, kind(err))
	_, err = f.interactions.Comment(ctx, id, b, "   ")
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))

	p, err := f.interactions.Comment(ctx, id, owner, " mine ")
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "mine", p.Comments[0].Text)

	f.clock.Advance(time.Hour)
	_, err = f.interactions.Like(ctx, id, owner)
	assert.Equal(t, apperr.KindForbidden, kind(err), "owner exclusion holds after expiry")
}

func TestListByTopicStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "a")

	short := f.post(t, owner, 1, "Tech")
	f.clock.Advance(time.Second)
	long := f.post(t, owner, 60, "Tech")
	f.post(t, owner, 60, "Health")
	f.clock.Advance(2 * time.Minute)

	live, err := f.postSvc.ListByTopic(ctx, "Tech", "Live")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, long.ID, live[0].ID)

	expired, err := f.postSvc.ListByTopic(ctx, "Tech", "Expired")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, short.ID, expired[0].ID)

	all, err := f.postSvc.ListByTopic(ctx, "Tech", "whatever")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, short.ID, all[0].ID)

	onlyExpired, err := f.postSvc.ListExpired(ctx, "Tech")
	require.NoError(t, err)
	require.Len(t, onlyExpired, 1)
	assert.Equal(t, short.ID, onlyExpired[0].ID)

	_, err = f.postSvc.ListByTopic(ctx, "Cooking", "")
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))
}

func TestHighestInterest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	voters := make([]*models.User, 5)
	for i := range voters {
		voters[i] = f.user(t, string(rune('a'+i)))
	}

	three := f.post(t, owner, 5, "Tech")
	five := f.post(t, owner, 5, "Tech")
	for i, v := range voters {
		if i < 3 {
			_, err := f.interactions.Dislike(ctx, three.ID.Hex(), v)
			require.NoError(t, err)
		}
		_, err := f.interactions.Like(ctx, five.ID.Hex(), v)
		require.NoError(t, err)
	}

	best, err := f.postSvc.HighestInterest(ctx, "Tech")
	require.NoError(t, err)
	assert.Equal(t, five.ID, best.ID)

	f.clock.Advance(6 * time.Minute)
	_, err = f.postSvc.HighestInterest(ctx, "Tech")
	assert.Equal(t, apperr.KindNotFound, kind(err))

	_, err = f.postSvc.HighestInterest(ctx, "")
	assert.Equal(t, apperr.KindInvalidArgument, kind(err))
}

func TestHighestInterestTieKeepsFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	first := f.post(t, owner, 5, "Health")
	f.clock.Advance(time.Second)
	f.post(t, owner, 5, "Health")

	best, err := f.postSvc.HighestInterest(context.Background(), "Health")
	require.NoError(t, err)
	assert.Equal(t, first.ID, best.ID)
}

// racingRepo reports a failed conditional commit and then serves an expired
// copy, as if the post expired between read and write.
type racingRepo struct {
	*repository.MemoryPostRepository
	reads int
}

func (r *racingRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	p, err := r.MemoryPostRepository.FindByID(ctx, id)
	r.reads++
	if err == nil && r.reads > 1 {
		p.ExpirationAt = p.CreatedAt
	}
	return p, err
}

func (r *racingRepo) Commit(context.Context, bson.ObjectID, interaction.Mutation, time.Time) (*models.Post, error) {
	return nil, repository.ErrConditionFailed
}

func TestCommitConditionFailureReportsFreshReason(t *testing.T) {
	f := newFixture(t)
	owner, b := f.user(t, "a"), f.user(t, "b")
	p := f.post(t, owner, 5, "Tech")

	svc := NewInteractionService(&racingRepo{MemoryPostRepository: f.posts}, f.clock.Now)
	_, err := svc.Like(context.Background(), p.ID.Hex(), b)
	assert.Equal(t, apperr.KindConflict, kind(err))
}

type brokenRepo struct{ *repository.MemoryPostRepository }

func (brokenRepo) FindByID(context.Context, bson.ObjectID) (*models.Post, error) {
	return nil, errors.New("connection reset")
}

func TestStoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	b := f.user(t, "b")

	svc := NewInteractionService(brokenRepo{f.posts}, f.clock.Now)
	_, err := svc.Like(context.Background(), bson.NewObjectID().Hex(), b)
	assert.Equal(t, apperr.KindInternal, kind(err))
}
