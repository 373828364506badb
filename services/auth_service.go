package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"supernova/models"
	"supernova/repository"
)

const bcryptCost = 10

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type AuthService struct {
	users    repository.UserRepository
	denylist repository.Denylist
	issuer   TokenIssuer
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, denylist repository.Denylist, issuer TokenIssuer) *AuthService {
	return &AuthService{users: users, denylist: denylist, issuer: issuer, now: time.Now}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName models.FullName
	Role     string
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

type AddressInput struct {
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	Phone     string
	IsDefault bool
}

// Token is a freshly signed session credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, Token, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleSeller {
		return nil, Token{}, fmt.Errorf("%w: role must be user or seller", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, Token{}, fmt.Errorf("auth.Register: hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     strings.ToLower(in.Email),
		Password:  string(hash),
		FullName:  in.FullName,
		Role:      role,
		Addresses: []models.Address{},
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Token{}, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, Token{}, fmt.Errorf("auth.Register: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, Token, error) {
	if in.Email == "" && in.Username == "" {
		return nil, Token{}, fmt.Errorf("%w: email or username is required", ErrInvalidInput)
	}

	user, err := s.users.FindByLogin(ctx, strings.ToLower(in.Email), in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Token{}, ErrInvalidCredentials
		}
		return nil, Token{}, fmt.Errorf("auth.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, Token{}, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

func (s *AuthService) issue(user *models.User) (Token, error) {
	value, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return Token{}, fmt.Errorf("auth.issue: %w", err)
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	return s.user(ctx, session.UserID)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if err := s.denylist.Add(ctx, session.Token, session.ExpiresAt); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

func (s *AuthService) Addresses(ctx context.Context, session *models.Session) ([]models.Address, error) {
	user, err := s.user(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

// AddAddress appends an address; the first address always becomes the default.
func (s *AuthService) AddAddress(ctx context.Context, session *models.Session, in AddressInput) (*models.Address, error) {
	user, err := s.user(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	addr := models.Address{
		ID:        primitive.NewObjectID(),
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		Phone:     in.Phone,
		IsDefault: in.IsDefault || len(user.Addresses) == 0,
	}
	if addr.IsDefault {
		for i := range user.Addresses {
			user.Addresses[i].IsDefault = false
		}
	}
	user.Addresses = append(user.Addresses, addr)

	if err := s.saveAddresses(ctx, user); err != nil {
		return nil, err
	}
	return &addr, nil
}

// DeleteAddress removes an address, promoting the first remaining one when
// the default was removed.
func (s *AuthService) DeleteAddress(ctx context.Context, session *models.Session, addressID primitive.ObjectID) ([]models.Address, error) {
	user, err := s.user(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	idx := indexOfAddress(user.Addresses, addressID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: address not found", ErrNotFound)
	}
	wasDefault := user.Addresses[idx].IsDefault
	user.Addresses = append(user.Addresses[:idx], user.Addresses[idx+1:]...)
	if wasDefault && len(user.Addresses) > 0 {
		user.Addresses[0].IsDefault = true
	}

	if err := s.saveAddresses(ctx, user); err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

func (s *AuthService) SetDefaultAddress(ctx context.Context, session *models.Session, addressID primitive.ObjectID) ([]models.Address, error) {
	user, err := s.user(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if indexOfAddress(user.Addresses, addressID) < 0 {
		return nil, fmt.Errorf("%w: address not found", ErrNotFound)
	}
	for i := range user.Addresses {
		user.Addresses[i].IsDefault = user.Addresses[i].ID == addressID
	}

	if err := s.saveAddresses(ctx, user); err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

func (s *AuthService) user(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("auth.user: %w", err)
	}
	return user, nil
}

func (s *AuthService) saveAddresses(ctx context.Context, user *models.User) error {
	if err := s.users.UpdateAddresses(ctx, user.ID, user.Addresses); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return fmt.Errorf("auth.saveAddresses: %w", err)
	}
	return nil
}

func indexOfAddress(addresses []models.Address, id primitive.ObjectID) int {
	for i, a := range addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}
