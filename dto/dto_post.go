package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"piazza/internal/models"
)

// TopicList accepts either "Tech" or ["Tech", "Health"].
type TopicList []string

func (t *TopicList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var many []string
		if err := json.Unmarshal(b, &many); err != nil {
			return errors.New("topic must be a string or an array of strings")
		}
		*t = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return errors.New("topic must be a string or an array of strings")
	}
	*t = TopicList{one}
	return nil
}

// Minutes accepts a JSON number or a numeric string.
type Minutes float64

func (m *Minutes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return errors.New("expirationMinutes must be a number")
	}
	*m = Minutes(f)
	return nil
}

type CreatePostDTO struct {
	Title             string    `json:"title" validate:"required"`
	Message           string    `json:"message" validate:"required"`
	Topic             TopicList `json:"topic" validate:"required,min=1"`
	ExpirationMinutes Minutes   `json:"expirationMinutes" validate:"required"`
}

type PostResponse struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Message          string        `json:"message"`
	Topics           []string      `json:"topics"`
	CreatedAt        string        `json:"createdAt"`
	ExpirationAt     string        `json:"expirationAt"`
	Owner            string        `json:"owner"`
	OwnerDisplayName string        `json:"ownerDisplayName"`
	LikeCount        int           `json:"likeCount"`
	DislikeCount     int           `json:"dislikeCount"`
	LikedBy          []string      `json:"likedBy"`
	DislikedBy       []string      `json:"dislikedBy"`
	Comments         []CommentResp `json:"comments"`
	Status           string        `json:"status"`
	TimeLeftSeconds  int64         `json:"timeLeftSeconds"`
}

func hexes(ids []bson.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// NewPostResponse renders p as of now; status, counts and participant lists
// are all derived here.
func NewPostResponse(p *models.Post, now time.Time) PostResponse {
	liked := p.Participants(models.ReactionLike)
	disliked := p.Participants(models.ReactionDislike)

	topics := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		topics = append(topics, string(t))
	}
	comments := make([]CommentResp, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, CommentResp{
			ID:                c.ID.Hex(),
			Author:            c.AuthorID.Hex(),
			AuthorDisplayName: c.AuthorDisplayName,
			Text:              c.Text,
			CreatedAt:         c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return PostResponse{
		ID:               p.ID.Hex(),
		Title:            p.Title,
		Message:          p.Message,
		Topics:           topics,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
		ExpirationAt:     p.ExpirationAt.UTC().Format(time.RFC3339),
		Owner:            p.OwnerID.Hex(),
		OwnerDisplayName: p.OwnerDisplayName,
		LikeCount:        len(liked),
		DislikeCount:     len(disliked),
		LikedBy:          hexes(liked),
		DislikedBy:       hexes(disliked),
		Comments:         comments,
		Status:           string(p.StatusAt(now)),
		TimeLeftSeconds:  p.TimeLeftSeconds(now),
	}
}

func NewPostResponses(posts []models.Post, now time.Time) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostResponse(&posts[i], now))
	}
	return out
}
