package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/service"
	"medvault/mocks"
)

func testShareConfig() config.ShareConfig {
	return config.ShareConfig{
		DefaultExpiry:     72 * time.Hour,
		MaxExpiry:         720 * time.Hour,
		OTPLength:         6,
		OTPTTL:            10 * time.Minute,
		OTPResendInterval: time.Minute,
		OTPMaxAttempts:    5,
		AccessTokenTTL:    30 * time.Minute,
	}
}

type shareFixture struct {
	shares *mocks.MockShareRepo
	users  *mocks.MockUserRepo
	scans  *mocks.MockCardScanRepo
	files  *mocks.MockFileService
	email  *mocks.MockEmailSender
	auth   *mocks.MockAuthService
	svc    service.ShareService
	owner  *domain.User
}

func newShareFixture() *shareFixture {
	f := &shareFixture{
		shares: new(mocks.MockShareRepo),
		users:  new(mocks.MockUserRepo),
		scans:  new(mocks.MockCardScanRepo),
		files:  new(mocks.MockFileService),
		email:  new(mocks.MockEmailSender),
		auth:   new(mocks.MockAuthService),
		owner:  &domain.User{ID: uuid.New(), FullName: "Jordan Lee", IsActive: true},
	}
	f.svc = service.NewShareService(f.shares, f.users, f.scans, f.files, f.email, f.auth, testShareConfig())
	service.SetShareServiceNow(f.svc, func() time.Time { return fixedNow })
	return f
}

func hashCode(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestShareService_Create(t *testing.T) {
	f := newShareFixture()
	var stored *domain.Share

	f.users.On("GetByID", mock.Anything, f.owner.ID).Return(f.owner, nil)
	f.shares.On("Create", mock.Anything, mock.AnythingOfType("*domain.Share")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Share)
		stored.ID = uuid.New()
	}).Return(nil)
	f.email.On("SendShareInvite", mock.Anything, "dr.patel@example.com", "Dr. Patel", "Jordan Lee",
		mock.AnythingOfType("string"), fixedNow.Add(72*time.Hour)).Return(nil)

	out, err := f.svc.Create(context.Background(), f.owner.ID, service.CreateShareInput{
		RecipientEmail: " Dr.Patel@Example.com",
		RecipientName:  "Dr. Patel",
		Scopes:         []domain.ShareScope{domain.ShareScopeInsuranceCards, domain.ShareScopeInsuranceCards},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, service.HashShareToken(out.Token), stored.TokenHash)
	assert.NotEqual(t, out.Token, stored.TokenHash)
	assert.Equal(t, domain.ShareScopes{domain.ShareScopeInsuranceCards}, stored.Scopes)
	assert.Equal(t, fixedNow.Add(72*time.Hour), stored.ExpiresAt)
	f.email.AssertExpectations(t)
}

func TestShareService_Create_InviteFailureStillSucceeds(t *testing.T) {
	f := newShareFixture()

	f.users.On("GetByID", mock.Anything, f.owner.ID).Return(f.owner, nil)
	f.shares.On("Create", mock.Anything, mock.AnythingOfType("*domain.Share")).Return(nil)
	f.email.On("SendShareInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("ses throttled"))

	out, err := f.svc.Create(context.Background(), f.owner.ID, service.CreateShareInput{
		RecipientEmail: "a@example.com", RecipientName: "A",
		Scopes:         []domain.ShareScope{domain.ShareScopeRecordFiles},
		ExpiresInHours: 24,
	})

	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(24*time.Hour), out.Share.ExpiresAt)
}

func TestShareService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   service.CreateShareInput
		wantErr error
	}{
		{"no scopes", service.CreateShareInput{Scopes: nil}, domain.ErrInvalidShareScope},
		{"unknown scope", service.CreateShareInput{Scopes: []domain.ShareScope{"lab_results"}}, domain.ErrInvalidShareScope},
		{"expiry too long", service.CreateShareInput{
			Scopes: []domain.ShareScope{domain.ShareScopeRecordFiles}, ExpiresInHours: 721,
		}, domain.ErrShareExpiryTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newShareFixture()
			_, err := f.svc.Create(context.Background(), f.owner.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			f.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func openShare(ownerID uuid.UUID) *domain.Share {
	return &domain.Share{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		RecipientEmail: "dr.patel@example.com",
		RecipientName:  "Dr. Patel",
		Scopes:         domain.ShareScopes{domain.ShareScopeInsuranceCards, domain.ShareScopeRecordFiles},
		ExpiresAt:      fixedNow.Add(48 * time.Hour),
	}
}

func TestShareService_RequestOTP(t *testing.T) {
	f := newShareFixture()
	share := openShare(f.owner.ID)
	var sentCode, storedHash string

	f.shares.On("GetByTokenHash", mock.Anything, service.HashShareToken("link-token")).Return(share, nil)
	f.shares.On("SetOTP", mock.Anything, share.ID, mock.AnythingOfType("string"), fixedNow.Add(10*time.Minute), fixedNow).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).Return(nil)
	f.email.On("SendShareCode", mock.Anything, share.RecipientEmail, share.RecipientName, mock.AnythingOfType("string"), 10*time.Minute).
		Run(func(args mock.Arguments) { sentCode = args.String(3) }).Return(nil)

	require.NoError(t, f.svc.RequestOTP(context.Background(), "link-token"))

	assert.Len(t, sentCode, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(sentCode)))
}

func TestShareService_RequestOTP_TooSoon(t *testing.T) {
	f := newShareFixture()
	share := openShare(f.owner.ID)
	sent := fixedNow.Add(-30 * time.Second)
	share.OTPSentAt = &sent

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)

	assert.ErrorIs(t, f.svc.RequestOTP(context.Background(), "link-token"), domain.ErrOTPResendTooSoon)
	f.shares.AssertNotCalled(t, "SetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShareService_RequestOTP_Unavailable(t *testing.T) {
	revokedAt := fixedNow.Add(-time.Hour)
	tests := []struct {
		name   string
		mutate func(s *domain.Share)
	}{
		{"revoked", func(s *domain.Share) { s.RevokedAt = &revokedAt }},
		{"expired", func(s *domain.Share) { s.ExpiresAt = fixedNow }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newShareFixture()
			share := openShare(f.owner.ID)
			tt.mutate(share)
			f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)

			assert.ErrorIs(t, f.svc.RequestOTP(context.Background(), "link-token"), domain.ErrShareUnavailable)
		})
	}
}

func TestShareService_RequestOTP_UnknownToken(t *testing.T) {
	f := newShareFixture()
	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(nil, domain.ErrShareNotFound)

	assert.ErrorIs(t, f.svc.RequestOTP(context.Background(), "nope"), domain.ErrShareNotFound)
	assert.ErrorIs(t, f.svc.RequestOTP(context.Background(), ""), domain.ErrShareNotFound)
}

func pendingOTPShare(t *testing.T, ownerID uuid.UUID, code string) *domain.Share {
	t.Helper()
	share := openShare(ownerID)
	expires := fixedNow.Add(5 * time.Minute)
	share.OTPHash = hashCode(t, code)
	share.OTPExpiresAt = &expires
	return share
}

func TestShareService_VerifyOTP_Success(t *testing.T) {
	f := newShareFixture()
	share := pendingOTPShare(t, f.owner.ID, "482913")

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)
	f.shares.On("ReserveOTPAttempt", mock.Anything, share.ID, 5).Return(1, nil)
	f.shares.On("ConsumeOTP", mock.Anything, share.ID, share.OTPHash, fixedNow).Return(nil)
	f.auth.On("IssueShareToken", share.ID, fixedNow.Add(30*time.Minute)).Return("share-jwt", nil)

	access, err := f.svc.VerifyOTP(context.Background(), "link-token", " 482913 ")

	require.NoError(t, err)
	assert.Equal(t, "share-jwt", access.AccessToken)
	assert.Equal(t, fixedNow.Add(30*time.Minute), access.ExpiresAt)
	f.shares.AssertExpectations(t)
}

func TestShareService_VerifyOTP_SessionCappedAtShareExpiry(t *testing.T) {
	f := newShareFixture()
	share := pendingOTPShare(t, f.owner.ID, "482913")
	share.ExpiresAt = fixedNow.Add(10 * time.Minute)

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)
	f.shares.On("ReserveOTPAttempt", mock.Anything, share.ID, 5).Return(1, nil)
	f.shares.On("ConsumeOTP", mock.Anything, share.ID, share.OTPHash, fixedNow).Return(nil)
	f.auth.On("IssueShareToken", share.ID, share.ExpiresAt).Return("share-jwt", nil)

	access, err := f.svc.VerifyOTP(context.Background(), "link-token", "482913")

	require.NoError(t, err)
	assert.Equal(t, share.ExpiresAt, access.ExpiresAt)
}

func TestShareService_VerifyOTP_WrongCode(t *testing.T) {
	f := newShareFixture()
	share := pendingOTPShare(t, f.owner.ID, "482913")

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)
	f.shares.On("ReserveOTPAttempt", mock.Anything, share.ID, 5).Return(2, nil)

	_, err := f.svc.VerifyOTP(context.Background(), "link-token", "000000")

	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	assert.Contains(t, err.Error(), "3 attempts remaining")
	f.shares.AssertNotCalled(t, "ConsumeOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShareService_VerifyOTP_BudgetSpentConcurrently(t *testing.T) {
	f := newShareFixture()
	share := pendingOTPShare(t, f.owner.ID, "482913")
	share.OTPAttempts = 4

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)
	f.shares.On("ReserveOTPAttempt", mock.Anything, share.ID, 5).Return(0, domain.ErrOTPLocked)

	_, err := f.svc.VerifyOTP(context.Background(), "link-token", "482913")

	assert.ErrorIs(t, err, domain.ErrOTPLocked)
	f.shares.AssertNotCalled(t, "ConsumeOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.auth.AssertNotCalled(t, "IssueShareToken", mock.Anything, mock.Anything)
}

func TestShareService_VerifyOTP_CodeAlreadyConsumed(t *testing.T) {
	f := newShareFixture()
	share := pendingOTPShare(t, f.owner.ID, "482913")

	f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)
	f.shares.On("ReserveOTPAttempt", mock.Anything, share.ID, 5).Return(1, nil)
	f.shares.On("ConsumeOTP", mock.Anything, share.ID, share.OTPHash, fixedNow).Return(domain.ErrOTPInvalid)

	_, err := f.svc.VerifyOTP(context.Background(), "link-token", "482913")

	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	f.auth.AssertNotCalled(t, "IssueShareToken", mock.Anything, mock.Anything)
}

func TestShareService_VerifyOTP_States(t *testing.T) {
	expired := fixedNow.Add(-time.Second)
	tests := []struct {
		name    string
		mutate  func(s *domain.Share)
		wantErr error
	}{
		{"not requested", func(s *domain.Share) { s.OTPHash = "" }, domain.ErrOTPNotRequested},
		{"expired", func(s *domain.Share) { s.OTPExpiresAt = &expired }, domain.ErrOTPExpired},
		{"locked", func(s *domain.Share) { s.OTPAttempts = 5 }, domain.ErrOTPLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newShareFixture()
			share := pendingOTPShare(t, f.owner.ID, "482913")
			tt.mutate(share)
			f.shares.On("GetByTokenHash", mock.Anything, mock.Anything).Return(share, nil)

			_, err := f.svc.VerifyOTP(context.Background(), "link-token", "482913")
			assert.ErrorIs(t, err, tt.wantErr)
			f.auth.AssertNotCalled(t, "IssueShareToken", mock.Anything, mock.Anything)
		})
	}
}

func TestShareService_Dashboard(t *testing.T) {
	f := newShareFixture()
	share := openShare(f.owner.ID)
	confirmed := domain.NewParsedInsuranceCard()
	confirmed.MemberID = "W123456789"
	confirmedAt := fixedNow.Add(-time.Hour)
	uploaded := domain.FileMeta{ID: uuid.New(), OriginalName: "labs.pdf", Status: domain.FileStatusUploaded}
	failed := domain.FileMeta{ID: uuid.New(), OriginalName: "broken.pdf", Status: domain.FileStatusFailed}

	f.shares.On("GetByID", mock.Anything, share.ID).Return(share, nil)
	f.users.On("GetByID", mock.Anything, f.owner.ID).Return(f.owner, nil)
	f.scans.On("ListAllByUser", mock.Anything, f.owner.ID, domain.ReviewStatusConfirmed).Return([]domain.CardScan{
		{ID: uuid.New(), ParsedData: domain.NewParsedInsuranceCard(), ConfirmedData: &confirmed, ConfirmedAt: &confirmedAt},
	}, nil)
	f.files.On("List", mock.Anything, f.owner.ID, domain.FileCategoryRecord, 0, 200).
		Return([]domain.FileMeta{uploaded, failed}, 2, nil)
	f.files.On("PresignedURL", mock.Anything, mock.MatchedBy(func(m *domain.FileMeta) bool { return m.ID == uploaded.ID })).
		Return("https://signed/labs", nil)

	dash, err := f.svc.Dashboard(context.Background(), share.ID)

	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", dash.OwnerName)
	require.Len(t, dash.InsuranceCards, 1)
	assert.Equal(t, "W123456789", dash.InsuranceCards[0].Card.MemberID)
	require.Len(t, dash.RecordFiles, 1)
	assert.Equal(t, "https://signed/labs", dash.RecordFiles[0].DownloadURL)
	f.files.AssertExpectations(t)
}

func TestShareService_Dashboard_ScopeLimitsData(t *testing.T) {
	f := newShareFixture()
	share := openShare(f.owner.ID)
	share.Scopes = domain.ShareScopes{domain.ShareScopeInsuranceCards}

	f.shares.On("GetByID", mock.Anything, share.ID).Return(share, nil)
	f.users.On("GetByID", mock.Anything, f.owner.ID).Return(f.owner, nil)
	f.scans.On("ListAllByUser", mock.Anything, f.owner.ID, domain.ReviewStatusConfirmed).Return([]domain.CardScan{}, nil)

	dash, err := f.svc.Dashboard(context.Background(), share.ID)

	require.NoError(t, err)
	assert.Empty(t, dash.RecordFiles)
	f.files.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShareService_Dashboard_RevokedAfterLogin(t *testing.T) {
	f := newShareFixture()
	share := openShare(f.owner.ID)
	revoked := fixedNow.Add(-time.Minute)
	share.RevokedAt = &revoked

	f.shares.On("GetByID", mock.Anything, share.ID).Return(share, nil)

	_, err := f.svc.Dashboard(context.Background(), share.ID)
	assert.ErrorIs(t, err, domain.ErrShareUnavailable)
}

func TestShareService_Revoke(t *testing.T) {
	f := newShareFixture()
	shareID := uuid.New()

	f.shares.On("Revoke", mock.Anything, f.owner.ID, shareID, fixedNow).Return(nil)

	require.NoError(t, f.svc.Revoke(context.Background(), f.owner.ID, shareID))
	f.shares.AssertExpectations(t)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := service.GenerateOTP(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', code)
		}
	}
}

// memShareRepo holds one share and applies the conditional OTP updates under a
// lock the way the database applies them per row.
type memShareRepo struct {
	mu    sync.Mutex
	share domain.Share
}

func (r *memShareRepo) Create(context.Context, *domain.Share) error { return nil }

func (r *memShareRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Share, error) {
	return r.snapshot(id)
}

func (r *memShareRepo) GetByTokenHash(context.Context, string) (*domain.Share, error) {
	return r.snapshot(r.share.ID)
}

func (r *memShareRepo) ListByOwner(context.Context, uuid.UUID, int, int) ([]domain.Share, int, error) {
	return nil, 0, nil
}

func (r *memShareRepo) Revoke(context.Context, uuid.UUID, uuid.UUID, time.Time) error { return nil }

func (r *memShareRepo) SetOTP(context.Context, uuid.UUID, string, time.Time, time.Time) error {
	return nil
}

func (r *memShareRepo) ReserveOTPAttempt(_ context.Context, _ uuid.UUID, maxAttempts int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.share.OTPHash == "" || r.share.OTPAttempts >= maxAttempts {
		return 0, domain.ErrOTPLocked
	}
	r.share.OTPAttempts++
	return r.share.OTPAttempts, nil
}

func (r *memShareRepo) ConsumeOTP(_ context.Context, _ uuid.UUID, otpHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.share.OTPHash == "" || r.share.OTPHash != otpHash {
		return domain.ErrOTPInvalid
	}
	r.share.OTPHash = ""
	r.share.OTPExpiresAt = nil
	r.share.OTPAttempts = 0
	r.share.AccessCount++
	r.share.LastAccessedAt = &at
	return nil
}

func (r *memShareRepo) snapshot(id uuid.UUID) (*domain.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.share.ID {
		return nil, domain.ErrShareNotFound
	}
	s := r.share
	return &s, nil
}

func newMemShareService(t *testing.T, code string) (*memShareRepo, *mocks.MockAuthService, service.ShareService) {
	t.Helper()
	repo := &memShareRepo{share: *pendingOTPShare(t, uuid.New(), code)}
	auth := new(mocks.MockAuthService)
	auth.On("IssueShareToken", repo.share.ID, mock.AnythingOfType("time.Time")).Return("share-jwt", nil)
	svc := service.NewShareService(repo, new(mocks.MockUserRepo), new(mocks.MockCardScanRepo),
		new(mocks.MockFileService), new(mocks.MockEmailSender), auth, testShareConfig())
	service.SetShareServiceNow(svc, func() time.Time { return fixedNow })
	return repo, auth, svc
}

func TestShareService_VerifyOTP_ParallelWrongCodesShareOneBudget(t *testing.T) {
	repo, _, svc := newMemShareService(t, "482913")

	const workers = 40
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid int
		locked  int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.VerifyOTP(context.Background(), "link-token", "000000")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, domain.ErrOTPInvalid):
				invalid++
			case errors.Is(err, domain.ErrOTPLocked):
				locked++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 5, invalid)
	assert.Equal(t, workers-5, locked)
	assert.Equal(t, 5, repo.share.OTPAttempts)

	_, err := svc.VerifyOTP(context.Background(), "link-token", "482913")
	assert.ErrorIs(t, err, domain.ErrOTPLocked)
}

func TestShareService_VerifyOTP_ParallelCorrectCodeGrantsOnce(t *testing.T) {
	repo, auth, svc := newMemShareService(t, "482913")

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		granted  int
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.VerifyOTP(context.Background(), "link-token", "482913")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, domain.ErrOTPInvalid),
				errors.Is(err, domain.ErrOTPLocked),
				errors.Is(err, domain.ErrOTPNotRequested):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 1, repo.share.AccessCount)
	auth.AssertNumberOfCalls(t, "IssueShareToken", 1)
}
