package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the demo account resource. Its phone, legal id and bank card
// fields are sensitive and get masked in traffic logs.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	UserPhone string    `json:"userPhone"`
	LegalID   string    `json:"legalId,omitempty"`
	BankCard  string    `json:"bankCard,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest is the body of POST /api/v1/users
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	UserPhone string `json:"userPhone" validate:"required,numeric,len=11"`
	LegalID   string `json:"legalId,omitempty" validate:"omitempty,len=18"`
	BankCard  string `json:"bankCard,omitempty" validate:"omitempty,numeric,min=12,max=19"`
}

// NewUser creates a User from a validated request
func NewUser(req CreateUserRequest) *User {
	return &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		UserPhone: req.UserPhone,
		LegalID:   req.LegalID,
		BankCard:  req.BankCard,
		CreatedAt: time.Now().UTC(),
	}
}

// SampleUsers returns the fixed users served by the demo API
func SampleUsers() []User {
	created := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	return []User{
		{
			ID:        uuid.MustParse("6f1c2b8e-1d4a-4c1e-9a57-3b0f5e2d7c01"),
			Name:      "Li Lei",
			Email:     "lilei@example.com",
			UserPhone: "13812345678",
			LegalID:   "110101199001011234",
			BankCard:  "6222020200112233445",
			CreatedAt: created,
		},
		{
			ID:        uuid.MustParse("0b7e4f3a-92c6-4d7b-8e15-6a4c9d2f1e02"),
			Name:      "Han Meimei",
			Email:     "hanmeimei@example.com",
			UserPhone: "13987654321",
			LegalID:   "310104198512125678",
			CreatedAt: created,
		},
	}
}
