// Package interaction holds the like/dislike/comment rules for a single post.
//
// Decide validates an action against the current document and returns the
// mutation to commit; Apply produces the next document for a mutation. Neither
// touches storage, so stores are free to commit a Mutation as one atomic write.
package interaction

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/apperr"
	"piazza/internal/models"
)

const (
	MsgPostNotFound  = "post not found"
	MsgPostExpired   = "post is expired, no more interactions allowed"
	MsgOwnerReaction = "owner cannot react to own post"
	MsgEmptyComment  = "comment text is required"
)

type Action int

const (
	ActionLike Action = iota + 1
	ActionDislike
	ActionComment
)

func (a Action) String() string {
	switch a {
	case ActionLike:
		return "like"
	case ActionDislike:
		return "dislike"
	case ActionComment:
		return "comment"
	}
	return "unknown"
}

// Request is one actor's attempt to interact with a post.
type Request struct {
	Action    Action
	Actor     bson.ObjectID
	ActorName string
	Text      string
}

type MutationKind int

const (
	// MutationNone means the post already reflects the request.
	MutationNone MutationKind = iota
	MutationReact
	MutationComment
)

type Mutation struct {
	Kind     MutationKind
	Actor    bson.ObjectID
	Reaction models.Reaction
	Comment  models.Comment
}

// NormalizeComment trims text and rejects it when nothing is left.
func NormalizeComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.InvalidArgument(MsgEmptyComment)
	}
	return text, nil
}

// Decide applies the preconditions in order: the post exists, the owner is
// not reacting to their own post, the post is still live. Owner exclusion
// precedes the expiry check so an owner is refused regardless of status.
func Decide(p *models.Post, req Request, now time.Time) (Mutation, error) {
	if p == nil {
		return Mutation{}, apperr.NotFound(MsgPostNotFound)
	}

	switch req.Action {
	case ActionLike, ActionDislike:
		if p.OwnerID == req.Actor {
			return Mutation{}, apperr.Forbidden(MsgOwnerReaction)
		}
		if p.StatusAt(now) == models.StatusExpired {
			return Mutation{}, apperr.Conflict(MsgPostExpired)
		}
		want := models.ReactionLike
		if req.Action == ActionDislike {
			want = models.ReactionDislike
		}
		if cur, ok := p.ReactionOf(req.Actor); ok && cur == want {
			return Mutation{Kind: MutationNone}, nil
		}
		return Mutation{Kind: MutationReact, Actor: req.Actor, Reaction: want}, nil

	case ActionComment:
		text, err := NormalizeComment(req.Text)
		if err != nil {
			return Mutation{}, err
		}
		if p.StatusAt(now) == models.StatusExpired {
			return Mutation{}, apperr.Conflict(MsgPostExpired)
		}
		return Mutation{
			Kind:  MutationComment,
			Actor: req.Actor,
			Comment: models.Comment{
				ID:                bson.NewObjectID(),
				AuthorID:          req.Actor,
				AuthorDisplayName: req.ActorName,
				Text:              text,
				CreatedAt:         now.UTC(),
			},
		}, nil
	}
	return Mutation{}, apperr.InvalidArgument("unknown action")
}

// Apply returns a copy of p with m committed. A reaction overwrites the
// actor's single slot, which is what removes an earlier opposite reaction.
func Apply(p *models.Post, m Mutation) *models.Post {
	next := p.Clone()
	switch m.Kind {
	case MutationReact:
		next.Reactions[m.Actor.Hex()] = m.Reaction
	case MutationComment:
		next.Comments = append(next.Comments, m.Comment)
	default:
		return next
	}
	next.Version++
	return next
}
