package handler

import "github.com/msomdec/account-service/internal/domain"

// UserDTO is the outward JSON representation of a user. It never carries
// the password hash.
type UserDTO struct {
	ID      string `json:"id"`
	Account string `json:"account"`
	Name    string `json:"name"`
	Mail    string `json:"mail"`
	Head    string `json:"head"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:      u.ID,
		Account: u.Account,
		Name:    u.Name,
		Mail:    u.Mail,
		Head:    u.Head,
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

type registerRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
	Head     string `json:"head"`
}

type updateRequest struct {
	Password string `json:"password"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
	Head     string `json:"head"`
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}
