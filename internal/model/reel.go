package model

// Feed is a constant partition value so the byFeed GSI can return all reels
// ordered by createdAt.
const ReelFeedPartition = "reel"

type ReelItem struct {
	ReelID        string `dynamodbav:"reelId"`
	Feed          string `dynamodbav:"feed"`
	UserID        string `dynamodbav:"userId"`
	Caption       string `dynamodbav:"caption,omitempty"`
	VideoURL      string `dynamodbav:"videoUrl"`
	LikesCount    int    `dynamodbav:"likesCount"`
	CommentsCount int    `dynamodbav:"commentsCount"`
	CreatedAt     string `dynamodbav:"createdAt"`
}

type LikeItem struct {
	PK        string `dynamodbav:"pk"`
	UserID    string `dynamodbav:"userId"`
	ReelID    string `dynamodbav:"reelId"`
	CreatedAt string `dynamodbav:"createdAt"`
}

type CommentItem struct {
	PK        string `dynamodbav:"pk"`
	ReelID    string `dynamodbav:"reelId"`
	CommentID string `dynamodbav:"commentId"`
	UserID    string `dynamodbav:"userId"`
	Text      string `dynamodbav:"text"`
	CreatedAt string `dynamodbav:"createdAt"`
}
