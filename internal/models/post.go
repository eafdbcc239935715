package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Status string

const (
	StatusLive    Status = "Live"
	StatusExpired Status = "Expired"
)

// Reaction is the single like/dislike slot an actor holds on a post.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

type Comment struct {
	ID                bson.ObjectID `bson:"_id" json:"id"`
	AuthorID          bson.ObjectID `bson:"author_id" json:"author"`
	AuthorDisplayName string        `bson:"author_name" json:"authorDisplayName"`
	Text              string        `bson:"text" json:"text"`
	CreatedAt         time.Time     `bson:"created_at" json:"createdAt"`
}

// Post is the stored document. Reactions is keyed by the actor's hex id;
// liker/disliker sets and their counts are derived from it, never stored.
type Post struct {
	ID               bson.ObjectID       `bson:"_id,omitempty"`
	Title            string              `bson:"title"`
	Message          string              `bson:"message"`
	Topics           []Topic             `bson:"topics"`
	CreatedAt        time.Time           `bson:"created_at"`
	ExpirationAt     time.Time           `bson:"expiration_at"`
	OwnerID          bson.ObjectID       `bson:"owner_id"`
	OwnerDisplayName string              `bson:"owner_name"`
	Reactions        map[string]Reaction `bson:"reactions"`
	Comments         []Comment           `bson:"comments"`
	Version          int64               `bson:"version"`
}

// StatusAt reports Expired once now has reached ExpirationAt.
func (p *Post) StatusAt(now time.Time) Status {
	if !now.Before(p.ExpirationAt) {
		return StatusExpired
	}
	return StatusLive
}

func (p *Post) TimeLeftSeconds(now time.Time) int64 {
	left := p.ExpirationAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

func (p *Post) HasTopic(t Topic) bool {
	return slices.Contains(p.Topics, t)
}

func (p *Post) ReactionOf(actor bson.ObjectID) (Reaction, bool) {
	r, ok := p.Reactions[actor.Hex()]
	return r, ok
}

// Participants returns the actors holding the given reaction, sorted by id.
func (p *Post) Participants(r Reaction) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(p.Reactions))
	for hex, got := range p.Reactions {
		if got != r {
			continue
		}
		oid, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	slices.SortFunc(out, func(a, b bson.ObjectID) int {
		return slices.Compare(a[:], b[:])
	})
	return out
}

func (p *Post) Count(r Reaction) int {
	n := 0
	for _, got := range p.Reactions {
		if got == r {
			n++
		}
	}
	return n
}

// Interest is the highest-interest score: likes plus dislikes.
func (p *Post) Interest() int {
	return p.Count(ReactionLike) + p.Count(ReactionDislike)
}

// Clone returns a deep copy so callers can mutate without sharing maps or slices.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Topics = slices.Clone(p.Topics)
	cp.Comments = slices.Clone(p.Comments)
	cp.Reactions = make(map[string]Reaction, len(p.Reactions))
	for k, v := range p.Reactions {
		cp.Reactions[k] = v
	}
	return &cp
}
