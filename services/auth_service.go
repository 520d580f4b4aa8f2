package services

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	apiError "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"github.com/techagentng/scamwatch/services/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService interface
type AuthService interface {
	SignupUser(request *models.SignupRequest) (*models.User, *apiError.Error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	LogoutUser(accessToken string) *apiError.Error
}

// authService struct
type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
	}
}

func (s *authService) SignupUser(request *models.SignupRequest) (*models.User, *apiError.Error) {
	if err := models.ValidateWhiteSpaces(request); err != nil {
		return nil, apiError.ValidationError(err.Error())
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return nil, apiError.ValidationError(err.Error())
	}

	if err := s.authRepo.IsEmailExist(request.Email); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}
	if err := s.authRepo.IsUsernameExist(request.Username); err != nil {
		return nil, apiError.GetUniqueContraintError(err)
	}

	role, err := s.authRepo.FindRoleByName(models.RoleUser)
	if err != nil {
		log.Printf("SignupUser error fetching role: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	user := &models.User{
		Fullname:       request.Fullname,
		Username:       request.Username,
		Email:          request.Email,
		Telephone:      request.Telephone,
		HashedPassword: string(hashedPassword),
		RoleID:         role.ID,
	}
	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

// LoginUser logs in a user and returns the login response
func (s *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	if err := models.ValidateWhiteSpaces(loginRequest); err != nil {
		return nil, apiError.ValidationError(err.Error())
	}

	foundUser, err := s.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("invalid email or password", http.StatusUnprocessableEntity)
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if foundUser.IsBlocked {
		return nil, apiError.Forbidden("account is blocked")
	}

	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		return nil, apiError.ErrInvalidPassword
	}

	if foundUser.RoleID == uuid.Nil {
		log.Printf("User %s does not have a role assigned", foundUser.Email)
		return nil, apiError.New("user role not assigned", http.StatusInternalServerError)
	}

	roleName := foundUser.RoleName()
	accessToken, refreshToken, err := jwt.GenerateTokenPair(foundUser.Email, s.Config.JWTSecret, foundUser.ID, roleName)
	if err != nil {
		log.Printf("Error generating token pair for user %s: %v", foundUser.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:       foundUser.ID,
			Fullname: foundUser.Fullname,
			Username: foundUser.Username,
			Email:    foundUser.Email,
			RoleName: roleName,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// LogoutUser blacklists the access token so it cannot be replayed.
func (s *authService) LogoutUser(accessToken string) *apiError.Error {
	if accessToken == "" {
		return apiError.ValidationError("missing access token")
	}
	if err := s.authRepo.AddToBlacklist(&models.Blacklist{Token: accessToken}); err != nil {
		log.Printf("LogoutUser error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
