package dto

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}
