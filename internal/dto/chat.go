package dto

type MessageResponse struct {
	MessageID  string `json:"messageId"`
	Room       string `json:"room"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Room     string            `json:"room"`
	Partner  UserResponse      `json:"partner"`
	Messages []MessageResponse `json:"messages"`
}
