package services

import (
	"context"
	"errors"
	"strings"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/repository"
)

type userService struct {
	users    repository.UserRepository
	requests repository.OwnerRequestRepository
}

func NewUserService(users repository.UserRepository, requests repository.OwnerRequestRepository) UserService {
	return &userService{users: users, requests: requests}
}

func (s *userService) Profile(ctx context.Context, actor models.Actor) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, actor models.Actor, in models.ProfileInput) (*models.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	in.Contact = strings.TrimSpace(in.Contact)
	if in.Name == "" {
		return nil, badRequest("Name is required")
	}

	user, err := s.users.UpdateProfile(ctx, actor.UserID, in)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *userService) profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	status, err := ownerStatus(ctx, s.requests, user)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, OwnerRequestStatus: status}, nil
}

// ownerStatus resolves the owner request status shown to the user. Owners
// that were promoted without a request record count as approved.
func ownerStatus(ctx context.Context, requests repository.OwnerRequestRepository, user *models.User) (models.OwnerRequestStatus, error) {
	req, err := requests.GetByUser(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, models.ErrOwnerRequestNotFound) {
			return "", err
		}
		if user.Admin {
			return models.OwnerRequestApproved, nil
		}
		return models.OwnerRequestNone, nil
	}
	return req.Status, nil
}
