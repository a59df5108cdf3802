package domain

import "time"

// User is a registered account. PasswordHash never leaves the credential store boundary
// in a response: it is excluded from JSON and left empty by lookups that don't need it.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     *string   `json:"lastName"`
	Email        string    `json:"email"`
	MobileNumber *string   `json:"mobileNumber"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	MobileNumber *string
	PasswordHash *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.MobileNumber == nil && u.PasswordHash == nil
}

type CreateUserRequest struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=100,alphaspace"`
	LastName        string `json:"lastName" validate:"omitempty,max=100,alphaspace"`
	Email           string `json:"email" validate:"required,max=255,email"`
	MobileNumber    string `json:"mobileNumber" validate:"omitempty,phone"`
	Password        string `json:"password" validate:"required,min=6,max=72,maxbytes=72,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=2,max=100,alphaspace"`
	LastName     *string `json:"lastName" validate:"omitempty,max=100,alphaspace"`
	Email        *string `json:"email" validate:"omitempty,max=255,email"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,phone"`
	OldPassword  *string `json:"oldPassword"`
	Password     *string `json:"password" validate:"omitempty,min=6,max=72,maxbytes=72,strongpassword"`
}
