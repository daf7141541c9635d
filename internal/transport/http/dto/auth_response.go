package dto

import "github.com/baechuer/real-time-ressys/services/account-service/internal/domain"

type UserView struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func NewUserView(u domain.TokenUser) UserView {
	return UserView{UserID: u.UserID, Name: u.Name, Role: u.Role}
}

type LoginData struct {
	User    UserView `json:"user"`
	Message string   `json:"message"`
}

type MeData struct {
	User UserView `json:"user"`
}
