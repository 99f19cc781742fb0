package entity

import "strings"

const EventUserCreated = "user.created"

// IdentityEvent - тело webhook от identity provider
type IdentityEvent struct {
	Type string           `json:"type"`
	Data IdentityUserData `json:"data"`
}

type IdentityUserData struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PhoneNumbers []struct {
		PhoneNumber string `json:"phone_number"`
	} `json:"phone_numbers"`
}

// ToUser собирает пользователя из данных провайдера
// Если username не задан, используется "имя фамилия"
func (d IdentityUserData) ToUser() *User {
	user := &User{
		ID:       d.ID,
		Username: d.Username,
		Role:     RoleUser,
	}
	if user.Username == "" {
		user.Username = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}
	if len(d.EmailAddresses) > 0 {
		user.Email = d.EmailAddresses[0].EmailAddress
	}
	if len(d.PhoneNumbers) > 0 {
		user.Phone = d.PhoneNumbers[0].PhoneNumber
	}
	return user
}
