package model

import "fmt"

const (
	UsersTable    = "Users"
	ReelsTable    = "Reels"
	LikesTable    = "Likes"
	CommentsTable = "Comments"
	MessagesTable = "Messages"
)

type UserItem struct {
	UserID                   string `dynamodbav:"userId"`
	Username                 string `dynamodbav:"username"`
	DisplayName              string `dynamodbav:"displayName"`
	Email                    string `dynamodbav:"email"`
	PasswordHash             string `dynamodbav:"passwordHash"`
	Verified                 bool   `dynamodbav:"verified"`
	VerificationToken        string `dynamodbav:"verificationToken,omitempty"`
	VerificationTokenExpires string `dynamodbav:"verificationTokenExpires,omitempty"`
	CreatedAt                string `dynamodbav:"createdAt"`
}

func LikePK(userID, reelID string) string {
	return fmt.Sprintf("%s#%s", userID, reelID)
}

func CommentPK(reelID, commentID string) string {
	return fmt.Sprintf("%s#%s", reelID, commentID)
}

func MessagePK(room, messageID string) string {
	return fmt.Sprintf("%s#%s", room, messageID)
}
