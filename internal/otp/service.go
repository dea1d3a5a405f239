package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

var (
	ErrRateLimited      = errors.New("too many codes requested, please try again in a few minutes")
	ErrInvalidOrExpired = errors.New("code is invalid or has expired")
)

// Repository is the record store the service needs. Consumers define this
// interface, not the Postgres implementation.
type Repository interface {
	Insert(ctx context.Context, rec *domain.OTPRecord) error
	CountIssuedSince(ctx context.Context, email string, since time.Time) (int, error)
	// RecentUnverified returns up to limit unverified records with
	// expires_at after now, newest first.
	RecentUnverified(ctx context.Context, email string, now time.Time, limit int) ([]*domain.OTPRecord, error)
	MarkVerified(ctx context.Context, id int64) error
	// HasVerified reports whether a verified, unexpired record exists.
	HasVerified(ctx context.Context, email string, now time.Time) (bool, error)
}

// Sender delivers the plaintext code to the customer. Delivery is a side
// channel; the service never returns the code to its caller.
type Sender interface {
	Send(ctx context.Context, email, customerName, code string) error
}

// LogSender stands in where no mail transport is configured (local runs).
type LogSender struct{}

func (LogSender) Send(_ context.Context, email, _, code string) error {
	log.Printf("otp for %s: %s", email, code)
	return nil
}

const (
	// candidateLimit bounds how many recent unverified records Verify
	// scans. Scanning more than the single latest record lets a customer
	// succeed with an earlier code after an accidental double resend.
	candidateLimit = 5

	codeDigits = 6
)

var codeSpace = big.NewInt(1_000_000)

type Service struct {
	repo         Repository
	sender       Sender
	ttl          time.Duration
	rateWindow   time.Duration
	maxIssuances int

	now func() time.Time
}

func NewService(repo Repository, sender Sender, ttl, rateWindow time.Duration, maxIssuances int) *Service {
	return &Service{
		repo:         repo,
		sender:       sender,
		ttl:          ttl,
		rateWindow:   rateWindow,
		maxIssuances: maxIssuances,
		now:          time.Now,
	}
}

// Issue generates a fresh 6-digit code, stores its bcrypt hash and hands the
// plaintext to the sender. Prior unverified records stay live; they remain
// independently verifiable until expiry.
func (s *Service) Issue(ctx context.Context, email, customerName string) error {
	email = NormalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	now := s.now()
	rec := &domain.OTPRecord{
		Email:     email,
		CodeHash:  string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}

	if err := s.sender.Send(ctx, email, customerName, code); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Resend issues another code without invalidating earlier ones.
func (s *Service) Resend(ctx context.Context, email, customerName string) error {
	return s.Issue(ctx, email, customerName)
}

// Verify checks a submitted code. The rate limit is keyed on issuance count
// within the trailing window, not on failed guesses: it bounds how many
// valid codes an attacker can accumulate, independent of guess volume. The
// check runs first, so a correct code still fails once the limit is hit.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)
	now := s.now()

	issued, err := s.repo.CountIssuedSince(ctx, email, now.Add(-s.rateWindow))
	if err != nil {
		return fmt.Errorf("count issuances: %w", err)
	}
	if issued > s.maxIssuances {
		return ErrRateLimited
	}

	candidates, err := s.repo.RecentUnverified(ctx, email, now, candidateLimit)
	if err != nil {
		return fmt.Errorf("fetch otp records: %w", err)
	}

	for _, rec := range candidates {
		// bcrypt comparison is constant-time over the hash, so a wrong
		// code leaks nothing about which digits matched.
		if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) == nil {
			if err := s.repo.MarkVerified(ctx, rec.ID); err != nil {
				return fmt.Errorf("mark verified: %w", err)
			}
			return nil
		}
	}

	return ErrInvalidOrExpired
}

// HasVerified reports whether the email has completed verification recently
// enough for order creation (a verified record that has not yet expired).
func (s *Service) HasVerified(ctx context.Context, email string) (bool, error) {
	return s.repo.HasVerified(ctx, NormalizeEmail(email), s.now())
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode draws uniformly from [0, 1e6); leading zeros are kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
