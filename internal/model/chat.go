package model

import (
	"sort"
	"strings"
)

type MessageItem struct {
	PK         string `dynamodbav:"pk"`
	Room       string `dynamodbav:"room"`
	MessageID  string `dynamodbav:"messageId"`
	FromUserID string `dynamodbav:"fromUserId"`
	ToUserID   string `dynamodbav:"toUserId,omitempty"`
	Text       string `dynamodbav:"text"`
	CreatedAt  string `dynamodbav:"createdAt"`
}

// DirectRoom returns the shared room id for a pair of user ids. Both sides
// compute the same id regardless of who initiates ("a|b", sorted).
func DirectRoom(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
