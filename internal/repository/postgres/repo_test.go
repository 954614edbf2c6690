package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/internal/domain"
	"medvault/internal/repository/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

var scanColumns = []string{
	"id", "user_id", "source", "front_file_id", "back_file_id", "ocr_text", "parsed_data",
	"confirmed_data", "field_provenance", "parser_model", "status", "review_status", "error",
	"attempts", "retry_after", "parsed_at", "confirmed_at", "created_at", "updated_at",
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`))

	err := repo.Create(context.Background(), &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepo_CreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnResult(sqlmock.NewResult(0, 1))

	user := &domain.User{Email: "a@example.com", FullName: "A", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "A@Example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileMetaRepo_ListByUserFiltersCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewFileMetaRepo(db)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM file_metadata")).
		WithArgs(userID, domain.FileStatusDeleted, "insurance_card").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM file_metadata")).
		WithArgs(userID, domain.FileStatusDeleted, "insurance_card", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category", "file_name", "status", "created_at", "updated_at"}).
			AddRow(uuid.New().String(), userID.String(), "insurance_card", "front.jpg", "uploaded", now, now))

	files, total, err := repo.ListByUser(context.Background(), userID, domain.FileCategoryInsuranceCard, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, files, 1)
	assert.Equal(t, "front.jpg", files[0].FileName)
}

func TestFileMetaRepo_DeleteIsSoft(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewFileMetaRepo(db)
	userID, fileID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE file_metadata SET status = $1")).
		WithArgs(domain.FileStatusDeleted, sqlmock.AnyArg(), fileID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), userID, fileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCardScanRepo_ClaimQueued(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCardScanRepo(db)
	now := time.Now().UTC()
	scanID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`UPDATE card_scans SET status = \$1.*FOR UPDATE SKIP LOCKED.*RETURNING \*`).
		WithArgs(domain.ScanStatusProcessing, domain.ScanStatusQueued, 3).
		WillReturnRows(sqlmock.NewRows(scanColumns).AddRow(
			scanID.String(), userID.String(), "text", nil, nil, "Aetna\nID: W123456789",
			[]byte(`{"provider":{"name":"Aetna","confidence":"high"},"member_id":"W123456789"}`),
			nil, []byte(`{}`), "", "processing", "pending", "", 1, nil, nil, nil, now, now))

	scans, err := repo.ClaimQueued(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, scanID, scans[0].ID)
	assert.Equal(t, domain.ScanStatusProcessing, scans[0].Status)
	assert.Equal(t, "W123456789", scans[0].ParsedData.MemberID)
	assert.Equal(t, []string{}, scans[0].ParsedData.PhoneNumbers)
	assert.Nil(t, scans[0].ConfirmedData)
}

func TestCardScanRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCardScanRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM card_scans WHERE id = $1 AND user_id = $2")).
		WillReturnRows(sqlmock.NewRows(scanColumns))

	_, err := repo.GetByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrScanNotFound)
}

func TestCardScanRepo_UpdateReviewNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCardScanRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE card_scans SET review_status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReview(context.Background(), &domain.CardScan{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrScanNotFound)
}

func TestCardScanRepo_ListRescanCandidates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCardScanRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM card_scans")).
		WithArgs(uuid.Nil, domain.ScanSourceText, domain.ScanStatusCompleted, domain.ReviewStatusPending, 100).
		WillReturnRows(sqlmock.NewRows(scanColumns))

	scans, err := repo.ListRescanCandidates(context.Background(), uuid.Nil, 100)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestShareRepo_ReserveOTPAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	shareID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND otp_hash <> '' AND otp_attempts < $2 RETURNING otp_attempts")).
		WithArgs(shareID, 5).
		WillReturnRows(sqlmock.NewRows([]string{"otp_attempts"}).AddRow(3))

	n, err := repo.ReserveOTPAttempt(context.Background(), shareID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestShareRepo_ReserveOTPAttemptExhausted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	shareID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE shares SET otp_attempts = otp_attempts + 1")).
		WithArgs(shareID, 5).
		WillReturnRows(sqlmock.NewRows([]string{"otp_attempts"}))

	_, err := repo.ReserveOTPAttempt(context.Background(), shareID, 5)
	assert.ErrorIs(t, err, domain.ErrOTPLocked)
}

func TestShareRepo_ConsumeOTPAlreadyUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	shareID := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $2 AND otp_hash = $3")).
		WithArgs(at, shareID, "hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeOTP(context.Background(), shareID, "hash", at)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
}

func TestShareRepo_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	shareID := uuid.New()
	at := time.Now().UTC()
	driverErr := errors.New("rows affected unavailable")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shares SET otp_hash = ''")).
		WithArgs(at, shareID, "hash").
		WillReturnResult(sqlmock.NewErrorResult(driverErr))

	err := repo.ConsumeOTP(context.Background(), shareID, "hash", at)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, domain.ErrOTPInvalid)
}

func TestShareRepo_RevokeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	ownerID, shareID := uuid.New(), uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shares SET revoked_at = COALESCE(revoked_at, $1)")).
		WithArgs(at, shareID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Revoke(context.Background(), ownerID, shareID, at)
	assert.ErrorIs(t, err, domain.ErrShareNotFound)
}

func TestShareRepo_GetByTokenHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewShareRepo(db)
	now := time.Now().UTC()
	shareID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM shares WHERE token_hash = $1")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "recipient_email", "scopes", "token_hash", "expires_at", "created_at", "updated_at"}).
			AddRow(shareID.String(), uuid.New().String(), "dr@example.com", []byte(`["insurance_cards"]`), "abc", now.Add(time.Hour), now, now))

	share, err := repo.GetByTokenHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, shareID, share.ID)
	assert.True(t, share.HasScope(domain.ShareScopeInsuranceCards))
	assert.False(t, share.HasScope(domain.ShareScopeRecordFiles))
}

func TestCardScanRepo_RequeueStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewCardScanRepo(db)
	cutoff := time.Now().UTC().Add(-10 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE card_scans SET status = $1, attempts = attempts + 1")).
		WithArgs(domain.ScanStatusQueued, domain.ScanStatusProcessing, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.RequeueStale(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
