package models

import (
	"errors"
	"fmt"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a user of the application
type User struct {
	Model
	Fullname       string    `json:"fullname" binding:"required,min=2"`
	Username       string    `json:"username" gorm:"unique" binding:"required,min=2"`
	Telephone      string    `json:"telephone" gorm:"default:null"`
	Email          string    `json:"email" gorm:"unique;not null" binding:"required,email"`
	Password       string    `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword string    `json:"-"`
	IsBlocked      bool      `json:"is_blocked" gorm:"default:false"`
	RoleID         uuid.UUID `gorm:"type:uuid" json:"role_id"`
	Role           Role      `gorm:"foreignKey:RoleID" json:"role"`
}

// RoleName returns the user's role name, defaulting to User when the role
// association was not preloaded.
func (u *User) RoleName() string {
	if u.Role.Name == "" {
		return RoleUser
	}
	return u.Role.Name
}

// IsAdmin reports whether the user carries the Admin role.
func (u *User) IsAdmin() bool {
	return u.RoleName() == RoleAdmin
}

// IsAuthority reports whether the user may triage incidents.
func (u *User) IsAuthority() bool {
	name := u.RoleName()
	return name == RoleAuthority || name == RoleAdmin
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(64, errors.New("password cant be more than 64 characters")))
	return passwordValidator.Validate(password)
}

// ValidateWhiteSpaces trims and conforms tagged string fields in place.
func ValidateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func TranslateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}

type SignupRequest struct {
	Fullname  string `json:"fullname" binding:"required,min=2" conform:"trim"`
	Username  string `json:"username" binding:"required,min=2" conform:"trim"`
	Email     string `json:"email" binding:"required,email" conform:"trim,lower"`
	Telephone string `json:"telephone" conform:"trim"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" conform:"trim,lower"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleName string `json:"role_name"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Blacklist stores revoked access tokens until they expire.
type Blacklist struct {
	Model
	Token string `json:"token" gorm:"type:varchar(512);index"`
}
