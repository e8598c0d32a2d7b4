package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"popi-backend/internal/accesscode"
	"popi-backend/internal/models"
	"popi-backend/internal/ratelimit"
)

// Rejection reasons surfaced by issuance and verification. The verification
// reasons stay differentiated (invalid vs used vs expired) to match client
// expectations, at the cost of leaking code state to a prober; see DESIGN.md.
var (
	ErrAuthRequired        = errors.New("authentication required")
	ErrNotOwner            = errors.New("only the business owner or staff can issue codes")
	ErrBusinessNotFound    = errors.New("business not found")
	ErrRateLimited         = errors.New("too many code requests, wait before retrying")
	ErrCodeOrTokenRequired = errors.New("code or token is required")
	ErrInvalidCode         = errors.New("invalid code")
	ErrCodeUsed            = errors.New("code already used")
	ErrCodeExpired         = errors.New("code expired")
	ErrUserMismatch        = errors.New("code is bound to a different user")
)

const defaultCodeTTLMinutes = 10

// AccessConfig carries the issuance cooldowns. Zero values fall back to the
// production defaults (30s authenticated, 60s guest).
type AccessConfig struct {
	AuthCooldown  time.Duration
	GuestCooldown time.Duration
}

// AccessService issues and redeems single-use access codes for approved
// businesses.
type AccessService struct {
	db            *gorm.DB
	hasher        *accesscode.Hasher
	limiter       ratelimit.Store
	authCooldown  time.Duration
	guestCooldown time.Duration
}

// NewAccessService creates a new AccessService
func NewAccessService(db *gorm.DB, hasher *accesscode.Hasher, limiter ratelimit.Store, cfg AccessConfig) *AccessService {
	if cfg.AuthCooldown == 0 {
		cfg.AuthCooldown = 30 * time.Second
	}
	if cfg.GuestCooldown == 0 {
		cfg.GuestCooldown = 60 * time.Second
	}
	return &AccessService{
		db:            db,
		hasher:        hasher,
		limiter:       limiter,
		authCooldown:  cfg.AuthCooldown,
		guestCooldown: cfg.GuestCooldown,
	}
}

// IssueRequest describes one issuance call. Caller is nil for anonymous
// requests, which are only honored when Guest is set.
type IssueRequest struct {
	ApplicationID  uint
	Caller         *models.User
	TTLMinutes     int
	Guest          bool
	SuppliedUserID *uint
	CallerIP       string
}

// IssueResult carries the plaintext code and token. This is the only point
// at which the token exists outside the caller's QR payload; it cannot be
// retrieved again.
type IssueResult struct {
	Code          string     `json:"code"`
	Token         string     `json:"token"`
	ApplicationID uint       `json:"application_id"`
	UserID        *uint      `json:"user_id,omitempty"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// Issue generates, persists and returns a fresh access code for a business.
func (s *AccessService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	app, err := s.approvedApplication(req.ApplicationID)
	if err != nil {
		return nil, err
	}

	cooldown := s.guestCooldown
	if req.Caller != nil {
		if req.Caller.ID != app.UserID && !req.Caller.IsStaff {
			return nil, ErrNotOwner
		}
		cooldown = s.authCooldown
	} else if !req.Guest {
		return nil, ErrAuthRequired
	}

	// The marker is set before the insert; losing an insert afterwards just
	// costs the caller one cooldown window.
	key := fmt.Sprintf("access_code_rl:%s:%d", req.CallerIP, app.ID)
	acquired, err := s.limiter.Acquire(ctx, key, cooldown)
	if err != nil {
		return nil, fmt.Errorf("rate limiter unavailable: %w", err)
	}
	if !acquired {
		return nil, ErrRateLimited
	}

	// An authenticated caller is always bound to their own identity; a
	// client-supplied id is only accepted from guests, as an advisory hint.
	boundUserID := req.SuppliedUserID
	if req.Caller != nil {
		boundUserID = &req.Caller.ID
	}

	code, err := accesscode.GenerateCode()
	if err != nil {
		return nil, err
	}
	token, err := accesscode.GenerateToken()
	if err != nil {
		return nil, err
	}
	tokenHash := s.hasher.Hash(token)

	ttl := req.TTLMinutes
	if ttl <= 0 {
		ttl = defaultCodeTTLMinutes
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(ttl) * time.Minute)

	var createdByID *uint
	if req.Caller != nil {
		createdByID = &req.Caller.ID
	}

	record := models.AccessCode{
		ApplicationID: app.ID,
		Code:          code,
		TokenHash:     &tokenHash,
		UserID:        boundUserID,
		CreatedByID:   createdByID,
		ExpiresAt:     &expiresAt,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create access code: %w", err)
	}

	log.Printf("Access code issued for application %d (code id %d)", app.ID, record.ID)

	return &IssueResult{
		Code:          code,
		Token:         token,
		ApplicationID: app.ID,
		UserID:        boundUserID,
		IssuedAt:      record.CreatedAt,
		ExpiresAt:     &expiresAt,
	}, nil
}

// VerifyRequest describes one redemption attempt. At least one of Code and
// Token must be set.
type VerifyRequest struct {
	ApplicationID  uint
	Code           string
	Token          string
	SuppliedUserID *uint
	Caller         *models.User
}

// PlaceSummary is the minimal place payload returned on success.
type PlaceSummary struct {
	ID           uint   `json:"id"`
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
}

// Verify redeems a code or token. Exactly one concurrent caller can
// transition a record to used; everyone else is rejected.
func (s *AccessService) Verify(ctx context.Context, req VerifyRequest) (*PlaceSummary, error) {
	if req.Code == "" && req.Token == "" {
		return nil, ErrCodeOrTokenRequired
	}

	app, err := s.approvedApplication(req.ApplicationID)
	if err != nil {
		return nil, err
	}

	record, err := s.lookup(ctx, app.ID, req.Code, req.Token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if record.Used {
		return nil, ErrCodeUsed
	}
	if record.Expired(now) {
		return nil, ErrCodeExpired
	}
	if record.UserID != nil {
		effective := req.SuppliedUserID
		if req.Caller != nil {
			effective = &req.Caller.ID
		}
		if effective == nil || *effective != *record.UserID {
			return nil, ErrUserMismatch
		}
	}

	var usedByID *uint
	if req.Caller != nil {
		usedByID = &req.Caller.ID
	}

	// Guarded single-statement update: the WHERE used = false clause is the
	// compare-and-swap that closes the race between lookup and redemption.
	// Losers see zero affected rows and are rejected as already used.
	res := s.db.WithContext(ctx).Model(&models.AccessCode{}).
		Where("id = ? AND used = ?", record.ID, false).
		Updates(map[string]interface{}{
			"used":       true,
			"used_by_id": usedByID,
			"used_at":    now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to redeem access code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCodeUsed
	}

	log.Printf("Access code %d redeemed for application %d", record.ID, app.ID)

	return &PlaceSummary{
		ID:           app.ID,
		BusinessName: app.BusinessName,
		Address:      app.Address,
	}, nil
}

// lookup resolves a record by token hash first, falling back to the raw
// 6-digit code. The code path is deliberately weaker (guessable space) and
// kept as a low-friction fallback for manual entry.
func (s *AccessService) lookup(ctx context.Context, applicationID uint, code, token string) (*models.AccessCode, error) {
	var record models.AccessCode

	if token != "" {
		digest := s.hasher.Hash(token)
		err := s.db.WithContext(ctx).
			Where("application_id = ? AND token_hash = ?", applicationID, digest).
			Order("created_at DESC").
			First(&record).Error
		if err == nil {
			return &record, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("access code lookup failed: %w", err)
		}
	}

	if code != "" {
		err := s.db.WithContext(ctx).
			Where("application_id = ? AND code = ?", applicationID, code).
			Order("created_at DESC").
			First(&record).Error
		if err == nil {
			return &record, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("access code lookup failed: %w", err)
		}
	}

	return nil, ErrInvalidCode
}

// approvedApplication loads a business that exists and is approved. A
// pending or rejected business is reported as not found so its existence
// does not leak.
func (s *AccessService) approvedApplication(id uint) (*models.CollaboratorApplication, error) {
	var app models.CollaboratorApplication
	err := s.db.Where("id = ? AND status = ?", id, models.StatusApproved).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	return &app, nil
}
