package otp

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

type mockRepository struct {
	m       sync.Mutex
	records []*domain.OTPRecord
	nextID  int64
	err     error
}

func (m *mockRepository) Insert(_ context.Context, rec *domain.OTPRecord) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	rec.ID = m.nextID
	clone := *rec
	m.records = append(m.records, &clone)
	return nil
}

func (m *mockRepository) CountIssuedSince(_ context.Context, email string, since time.Time) (int, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, rec := range m.records {
		if rec.Email == email && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) RecentUnverified(_ context.Context, email string, now time.Time, limit int) ([]*domain.OTPRecord, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.OTPRecord
	// newest first
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.records[i]
		if rec.Email == email && !rec.Verified && now.Before(rec.ExpiresAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRepository) MarkVerified(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			rec.Verified = true
			return nil
		}
	}
	return fmt.Errorf("record %d not found", id)
}

func (m *mockRepository) HasVerified(_ context.Context, email string, now time.Time) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, rec := range m.records {
		if rec.Email == email && rec.Verified && now.Before(rec.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

type mockSender struct {
	codes []string
	err   error
}

func (m *mockSender) Send(_ context.Context, _, _, code string) error {
	if m.err != nil {
		return m.err
	}
	m.codes = append(m.codes, code)
	return nil
}

func (m *mockSender) lastCode() string {
	return m.codes[len(m.codes)-1]
}

func newTestService(repo *mockRepository, sender *mockSender) *Service {
	return NewService(repo, sender, 5*time.Minute, 5*time.Minute, 3)
}

func TestIssue_StoresHashNotPlaintext(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)

	require.NoError(t, sut.Issue(context.Background(), "Asha@Example.com", "Asha"))

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "asha@example.com", rec.Email, "email is normalized")
	assert.False(t, rec.Verified)
	assert.Equal(t, 5*time.Minute, rec.ExpiresAt.Sub(rec.CreatedAt))

	require.Len(t, sender.codes, 1)
	code := sender.lastCode()
	assert.Len(t, code, 6)
	assert.NotContains(t, rec.CodeHash, code, "plaintext must not be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)))
}

func TestIssue_SenderError(t *testing.T) {
	repo := &mockRepository{}
	sut := newTestService(repo, &mockSender{err: fmt.Errorf("smtp down")})

	err := sut.Issue(context.Background(), "asha@example.com", "Asha")
	require.ErrorContains(t, err, "smtp down")
}

func TestVerify_Success(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	require.NoError(t, sut.Verify(ctx, "asha@example.com", sender.lastCode()))
	assert.True(t, repo.records[0].Verified)
}

func TestVerify_WrongCode(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))

	wrong := "000000"
	if sender.lastCode() == wrong {
		wrong = "000001"
	}
	err := sut.Verify(ctx, "asha@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
	assert.False(t, repo.records[0].Verified)
}

func TestVerify_ExpiredCode(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	code := sender.lastCode()

	// Accepted right up to the expiry instant, rejected at and after it.
	issuedAt := repo.records[0].CreatedAt
	sut.now = func() time.Time { return issuedAt.Add(5*time.Minute - time.Second) }
	require.NoError(t, sut.Verify(ctx, "asha@example.com", code))

	repo.records[0].Verified = false
	sut.now = func() time.Time { return issuedAt.Add(5 * time.Minute) }
	assert.ErrorIs(t, sut.Verify(ctx, "asha@example.com", code), ErrInvalidOrExpired)
}

func TestVerify_ConsumedCodeRejectedOnSecondUse(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	code := sender.lastCode()

	require.NoError(t, sut.Verify(ctx, "asha@example.com", code))
	assert.ErrorIs(t, sut.Verify(ctx, "asha@example.com", code), ErrInvalidOrExpired)
}

func TestVerify_OlderCodeStillWorksAfterResend(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	first := sender.lastCode()
	require.NoError(t, sut.Resend(ctx, "asha@example.com", "Asha"))

	// The newer unused code does not shadow the earlier one.
	require.NoError(t, sut.Verify(ctx, "asha@example.com", first))
}

func TestVerify_RateLimitedAfterFourIssuances(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	}

	// Correct code, but issuance count exceeds the limit.
	err := sut.Verify(ctx, "asha@example.com", sender.lastCode())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestVerify_RateLimitWindowSlides(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	base := time.Now()
	sut.now = func() time.Time { return base }
	for i := 0; i < 4; i++ {
		require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	}
	require.ErrorIs(t, sut.Verify(ctx, "asha@example.com", sender.lastCode()), ErrRateLimited)

	// Old issuances fall out of the trailing window; a fresh code verifies.
	sut.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	require.NoError(t, sut.Verify(ctx, "asha@example.com", sender.lastCode()))
}

func TestVerify_ThreeIssuancesNotLimited(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	}
	require.NoError(t, sut.Verify(ctx, "asha@example.com", sender.lastCode()))
}

func TestHasVerified(t *testing.T) {
	repo := &mockRepository{}
	sender := &mockSender{}
	sut := newTestService(repo, sender)
	ctx := context.Background()

	ok, err := sut.HasVerified(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sut.Issue(ctx, "asha@example.com", "Asha"))
	require.NoError(t, sut.Verify(ctx, "asha@example.com", sender.lastCode()))

	ok, err = sut.HasVerified(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}
