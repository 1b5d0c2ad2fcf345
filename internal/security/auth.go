package security

import (
	"strings"

	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
)

// Account errors surfaced to API clients. The login failure message is
// identical for unknown id and wrong password so the endpoint does not leak
// which accounts exist.
var (
	ErrUserIDTaken          = errors.NewStd("이미 사용 중인 아이디입니다")
	ErrEmailTaken           = errors.NewStd("이미 사용 중인 이메일입니다")
	ErrInvalidCredentials   = errors.NewStd("아이디 또는 비밀번호가 올바르지 않습니다")
	ErrUserNotFound         = errors.NewStd("사용자를 찾을 수 없습니다")
	ErrCurrentPasswordBlank = errors.NewStd("현재 비밀번호를 입력해주세요")
	ErrCurrentPasswordWrong = errors.NewStd("현재 비밀번호가 올바르지 않습니다")
)

// SignupRequest carries a registration request.
type SignupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest carries a login attempt.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a profile update. Empty fields are left
// unchanged; a password change requires the current password.
type UpdateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserInfo is the public view of an account; it never carries the password
// hash.
type UserInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// LoginResult bundles the issued token with the account it belongs to.
type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// AuthService implements account registration, login and profile updates.
type AuthService struct {
	ds     datastore.Interface
	tokens *TokenProvider
}

// NewAuthService creates an AuthService backed by the given datastore.
func NewAuthService(ds datastore.Interface, tokens *TokenProvider) *AuthService {
	return &AuthService{ds: ds, tokens: tokens}
}

func userInfo(user *datastore.User) UserInfo {
	return UserInfo{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}

// Register creates a new account. User id and email must both be unused.
func (s *AuthService) Register(req *SignupRequest) (UserInfo, error) {
	taken, err := s.ds.UserIDExists(req.UserID)
	if err != nil {
		return UserInfo{}, err
	}
	if taken {
		return UserInfo{}, ErrUserIDTaken
	}

	taken, err = s.ds.EmailExists(req.Email)
	if err != nil {
		return UserInfo{}, err
	}
	if taken {
		return UserInfo{}, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return UserInfo{}, errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Context("operation", "hash_password").
			Build()
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	user := &datastore.User{
		UserID:   req.UserID,
		Password: hash,
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
	}
	if err := s.ds.CreateUser(user); err != nil {
		return UserInfo{}, err
	}
	return userInfo(user), nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(req *LoginRequest) (LoginResult, error) {
	user, err := s.ds.GetUser(req.UserID)
	if err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !CheckPassword(user.Password, req.Password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.UserID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: userInfo(&user)}, nil
}

// CurrentUser returns the account for an authenticated user id.
func (s *AuthService) CurrentUser(userID string) (UserInfo, error) {
	user, err := s.ds.GetUser(userID)
	if err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return UserInfo{}, ErrUserNotFound
		}
		return UserInfo{}, err
	}
	return userInfo(&user), nil
}

// UpdateUser applies a profile update for the authenticated user.
func (s *AuthService) UpdateUser(userID string, req *UpdateUserRequest) (UserInfo, error) {
	user, err := s.ds.GetUser(userID)
	if err != nil {
		if errors.Is(err, datastore.ErrRecordNotFound) {
			return UserInfo{}, ErrUserNotFound
		}
		return UserInfo{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		if email != user.Email {
			taken, err := s.ds.EmailExists(email)
			if err != nil {
				return UserInfo{}, err
			}
			if taken {
				return UserInfo{}, ErrEmailTaken
			}
		}
		user.Email = email
	}

	if newPassword := strings.TrimSpace(req.NewPassword); newPassword != "" {
		if strings.TrimSpace(req.CurrentPassword) == "" {
			return UserInfo{}, ErrCurrentPasswordBlank
		}
		if !CheckPassword(user.Password, req.CurrentPassword) {
			return UserInfo{}, ErrCurrentPasswordWrong
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return UserInfo{}, errors.New(err).
				Component("security").
				Category(errors.CategoryAuth).
				Context("operation", "hash_password").
				Build()
		}
		user.Password = hash
	}

	if err := s.ds.UpdateUser(&user); err != nil {
		return UserInfo{}, err
	}
	return userInfo(&user), nil
}
