package dto

type CreateReelRequest struct {
	Caption  string `json:"caption"`
	VideoURL string `json:"videoUrl"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type ReelResponse struct {
	ReelID        string `json:"reelId"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Caption       string `json:"caption"`
	VideoURL      string `json:"videoUrl"`
	LikesCount    int    `json:"likesCount"`
	CommentsCount int    `json:"commentsCount"`
	// Liked reflects whether the requesting user has liked the reel.
	Liked     bool   `json:"liked"`
	CreatedAt string `json:"createdAt"`
}

type ReelFeedResponse struct {
	Reels   []ReelResponse `json:"reels"`
	Page    int            `json:"page"`
	HasMore bool           `json:"hasMore"`
}

type LikeResponse struct {
	ReelID     string `json:"reelId"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likesCount"`
}

type CommentResponse struct {
	CommentID string `json:"commentId"`
	ReelID    string `json:"reelId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}
