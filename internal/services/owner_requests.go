package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	OTPLength   = 6
	OTPValidFor = 10 * time.Minute

	// OTPResendCooldown is the minimum gap between two codes for one user.
	OTPResendCooldown = time.Minute
)

type OwnerRequestDeps struct {
	Requests repository.OwnerRequestRepository
	Users    repository.UserRepository
	Mailer   OwnerMailer
	Cooldown Cooldown
	Now      func() time.Time
}

type ownerRequestService struct {
	OwnerRequestDeps
	logger zerolog.Logger
}

func NewOwnerRequestService(deps OwnerRequestDeps, logger zerolog.Logger) OwnerRequestService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &ownerRequestService{
		OwnerRequestDeps: deps,
		logger:           logger.With().Str("service", "owner_request").Logger(),
	}
}

// generateOTP returns a uniformly random numeric code of OTPLength digits.
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// issueOTP sets a fresh hashed code on req and returns the plain code.
func (s *ownerRequestService) issueOTP(req *models.OwnerRequest) (string, error) {
	otp, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	req.OTPHash = string(hash)
	req.OTPExpiresAt = s.Now().UTC().Add(OTPValidFor)
	return otp, nil
}

func (s *ownerRequestService) Request(ctx context.Context, actor models.Actor, in models.OwnerRequestInput) (*models.OwnerRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Contact = strings.TrimSpace(in.Contact)
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	if in.Name == "" || in.Email == "" || in.Contact == "" || in.RestaurantName == "" {
		return nil, models.ErrMissingFields
	}

	user, err := s.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user.Admin {
		return nil, models.ErrAlreadyOwner
	}

	existing, err := s.Requests.GetByUser(ctx, actor.UserID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.OwnerRequestPending:
			return nil, models.ErrRequestPending
		case models.OwnerRequestVerified:
			return nil, models.ErrRequestInReview
		case models.OwnerRequestApproved:
			return nil, models.ErrAlreadyOwner
		default:
			if err := s.Requests.Delete(ctx, existing.ID); err != nil {
				return nil, err
			}
		}
	case !errors.Is(err, models.ErrOwnerRequestNotFound):
		return nil, err
	}

	req := &models.OwnerRequest{
		User:           actor.UserID,
		Name:           in.Name,
		Email:          in.Email,
		Contact:        in.Contact,
		RestaurantName: in.RestaurantName,
		Message:        strings.TrimSpace(in.Message),
		Status:         models.OwnerRequestPending,
	}
	otp, err := s.issueOTP(req)
	if err != nil {
		return nil, err
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	if err := s.Mailer.SendOTP(ctx, req.Email, req.Name, otp, OTPValidFor); err != nil {
		s.logger.Error().Err(err).Str("user_id", actor.UserID.Hex()).Msg("failed to send otp, discarding request")
		if derr := s.Requests.Delete(ctx, req.ID); derr != nil {
			s.logger.Error().Err(derr).Str("request_id", req.ID.Hex()).Msg("failed to delete request")
		}
		return nil, models.ErrEmailFailed.Wrap(err)
	}

	if s.Cooldown != nil {
		// Start the resend window with the first code.
		if _, err := s.Cooldown.Acquire(ctx, actor.UserID.Hex()); err != nil {
			s.logger.Warn().Err(err).Msg("failed to start otp cooldown")
		}
	}

	return req, nil
}

func (s *ownerRequestService) pending(ctx context.Context, actor models.Actor) (*models.OwnerRequest, error) {
	req, err := s.Requests.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.OwnerRequestPending {
		return nil, models.ErrOwnerRequestNotFound
	}
	return req, nil
}

func (s *ownerRequestService) VerifyOTP(ctx context.Context, actor models.Actor, otp string) (*models.OwnerRequest, error) {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return nil, models.ErrMissingFields
	}

	req, err := s.pending(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req.OTPHash == "" || !s.Now().Before(req.OTPExpiresAt) {
		return nil, models.ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(req.OTPHash), []byte(otp)) != nil {
		return nil, models.ErrOTPInvalid
	}

	req.Status = models.OwnerRequestVerified
	req.OTPHash = ""
	req.OTPExpiresAt = time.Time{}
	if err := s.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Str("request_id", req.ID.Hex()).Msg("owner request verified")
	return req, nil
}

func (s *ownerRequestService) ResendOTP(ctx context.Context, actor models.Actor) error {
	req, err := s.pending(ctx, actor)
	if err != nil {
		return err
	}

	if s.Cooldown != nil {
		ok, err := s.Cooldown.Acquire(ctx, actor.UserID.Hex())
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrTooManyRequests
		}
	}

	otp, err := s.issueOTP(req)
	if err != nil {
		return err
	}
	if err := s.Requests.Update(ctx, req); err != nil {
		return err
	}
	if err := s.Mailer.SendOTP(ctx, req.Email, req.Name, otp, OTPValidFor); err != nil {
		return models.ErrEmailFailed.Wrap(err)
	}
	return nil
}

func (s *ownerRequestService) Mine(ctx context.Context, actor models.Actor) (models.OwnerRequestStatus, *models.OwnerRequest, error) {
	req, err := s.Requests.GetByUser(ctx, actor.UserID)
	if err == nil {
		return req.Status, req, nil
	}
	if !errors.Is(err, models.ErrOwnerRequestNotFound) {
		return "", nil, err
	}

	user, err := s.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return "", nil, err
	}
	if user.Admin {
		return models.OwnerRequestApproved, nil, nil
	}
	return models.OwnerRequestNone, nil, nil
}

func (s *ownerRequestService) List(ctx context.Context, status string) ([]models.OwnerRequest, error) {
	filter := models.OwnerRequestStatus(strings.TrimSpace(status))
	switch filter {
	case "", models.OwnerRequestPending, models.OwnerRequestVerified, models.OwnerRequestApproved, models.OwnerRequestRejected:
	default:
		return nil, badRequest("Invalid status filter: %s", status)
	}
	return s.Requests.List(ctx, filter)
}

func (s *ownerRequestService) UpdateStatus(ctx context.Context, id, decision string) (*models.OwnerRequest, error) {
	next := models.OwnerRequestStatus(decision)
	if next != models.OwnerRequestApproved && next != models.OwnerRequestRejected {
		return nil, models.ErrInvalidDecision
	}

	oid, err := parseID(id, models.ErrOwnerRequestNotFound)
	if err != nil {
		return nil, err
	}
	req, err := s.Requests.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if req.Status != models.OwnerRequestVerified {
		return nil, models.ErrRequestNotReview
	}

	req.Status = next
	if err := s.Requests.Update(ctx, req); err != nil {
		return nil, err
	}

	log := s.logger.With().Str("request_id", req.ID.Hex()).Str("user_id", req.User.Hex()).Logger()

	if next == models.OwnerRequestApproved {
		if err := s.Users.SetAdmin(ctx, req.User, true); err != nil {
			log.Error().Err(err).Msg("failed to promote user, reverting request")
			req.Status = models.OwnerRequestVerified
			if rerr := s.Requests.Update(ctx, req); rerr != nil {
				log.Error().Err(rerr).Msg("failed to revert owner request")
			}
			return nil, err
		}
		if err := s.Mailer.SendOwnerApproved(ctx, req); err != nil {
			log.Warn().Err(err).Msg("failed to send approval email")
		}
		log.Info().Msg("owner request approved")
		return req, nil
	}

	if err := s.Mailer.SendOwnerRejected(ctx, req); err != nil {
		log.Warn().Err(err).Msg("failed to send rejection email")
	}
	log.Info().Msg("owner request rejected")
	return req, nil
}
