package dto

type CreateCommentReq struct {
	Text string `json:"text" validate:"max=2000"`
}

type CommentResp struct {
	ID                string `json:"id"`
	Author            string `json:"author"`
	AuthorDisplayName string `json:"authorDisplayName"`
	Text              string `json:"text"`
	CreatedAt         string `json:"createdAt"`
}
