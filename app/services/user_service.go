package services

import (
	"errors"
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"
)

// SignupForm is the data submitted on the signup page.
type SignupForm struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// UserService handles accounts.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register validates form and creates a regular user.
func (s *UserService) Register(form SignupForm) (*models.User, error) {
	if form.Password1 == "" {
		return nil, fieldError("password1", "This field is required.")
	}
	if form.Password1 != form.Password2 {
		return nil, fieldError("password2", "The two password fields didn't match.")
	}
	return s.create(form.Username, form.Email, form.Password1, false)
}

// CreateSuperuser creates a staff user that may use the admin site.
func (s *UserService) CreateSuperuser(username, email, password string) (*models.User, error) {
	if password == "" {
		return nil, fieldError("password", "This field is required.")
	}
	return s.create(username, email, password, true)
}

func (s *UserService) create(username, email, password string, staff bool) (*models.User, error) {
	user := &models.User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		IsStaff:  staff,
	}
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fieldError("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user whose username and password match.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(id int) (*models.User, error) {
	return s.users.GetByID(id)
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.users.GetByUsername(username)
}

func (s *UserService) List() ([]*models.User, error) {
	return s.users.List()
}
