package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
	"medvault/internal/service"
	"medvault/mocks"
)

func runWorker(t *testing.T, worker *service.ScanQueueWorker, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

// newQueueRepo returns a scan repo mock that tolerates the per-poll stale sweep.
func newQueueRepo() *mocks.MockCardScanRepo {
	scanRepo := new(mocks.MockCardScanRepo)
	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()
	return scanRepo
}

func TestScanQueueWorker_PollsAndDispatches(t *testing.T) {
	scanRepo := newQueueRepo()
	cardSvc := new(mocks.MockCardService)

	scan := domain.CardScan{ID: uuid.New(), Status: domain.ScanStatusProcessing, Attempts: 0}

	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{scan}, nil).Once()
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil).Maybe()
	cardSvc.On("ProcessScan", mock.Anything, mock.MatchedBy(func(s *domain.CardScan) bool {
		return s.ID == scan.ID && s.Attempts == 1
	}), 5).Return().Once()

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{
		PollInterval: 20 * time.Millisecond,
		MaxRetries:   5,
		Concurrency:  2,
	})
	runWorker(t, worker, 150*time.Millisecond)

	cardSvc.AssertExpectations(t)
}

func TestScanQueueWorker_ClaimsUpToConcurrency(t *testing.T) {
	scanRepo := newQueueRepo()
	cardSvc := new(mocks.MockCardService)

	scanRepo.On("ClaimQueued", mock.Anything, 3).Return([]domain.CardScan{}, nil)

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{
		PollInterval: 20 * time.Millisecond,
		Concurrency:  3,
	})
	runWorker(t, worker, 80*time.Millisecond)

	scanRepo.AssertCalled(t, "ClaimQueued", mock.Anything, 3)
	cardSvc.AssertNotCalled(t, "ProcessScan", mock.Anything, mock.Anything, mock.Anything)
}

func TestScanQueueWorker_ClaimErrorKeepsPolling(t *testing.T) {
	scanRepo := newQueueRepo()
	cardSvc := new(mocks.MockCardService)

	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return(nil, errors.New("db down")).Once()
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil).Maybe()

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{PollInterval: 20 * time.Millisecond})
	runWorker(t, worker, 100*time.Millisecond)

	claims := 0
	for _, c := range scanRepo.Calls {
		if c.Method == "ClaimQueued" {
			claims++
		}
	}
	assert.GreaterOrEqual(t, claims, 2)
}

func TestScanQueueWorker_ShutdownWaitsForInFlight(t *testing.T) {
	scanRepo := newQueueRepo()
	cardSvc := new(mocks.MockCardService)
	finished := make(chan struct{})

	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.CardScan{{ID: uuid.New()}}, nil).Once()
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil).Maybe()
	cardSvc.On("ProcessScan", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		time.Sleep(100 * time.Millisecond)
		close(finished)
	}).Return()

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{PollInterval: 20 * time.Millisecond})
	runWorker(t, worker, 40*time.Millisecond)

	select {
	case <-finished:
	default:
		t.Fatal("Start returned before the in-flight scan finished")
	}
}

func TestScanQueueWorker_RequeuesStaleBeforeClaiming(t *testing.T) {
	scanRepo := new(mocks.MockCardScanRepo)
	cardSvc := new(mocks.MockCardService)
	var cutoff time.Time

	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Run(func(args mock.Arguments) {
		cutoff = args.Get(1).(time.Time)
	}).Return(2, nil).Once()
	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil)

	before := time.Now().UTC()
	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{
		PollInterval: 20 * time.Millisecond,
		ScanTimeout:  time.Minute,
		StaleAfter:   10 * time.Minute,
	})
	runWorker(t, worker, 60*time.Millisecond)

	scanRepo.AssertCalled(t, "ClaimQueued", mock.Anything, 1)
	assert.WithinDuration(t, before.Add(-10*time.Minute), cutoff, time.Second)

	first := map[string]int{}
	for i, c := range scanRepo.Calls {
		if _, ok := first[c.Method]; !ok {
			first[c.Method] = i
		}
	}
	assert.Less(t, first["RequeueStale"], first["ClaimQueued"])
}

func TestScanQueueWorker_StaleAfterNeverBelowScanTimeout(t *testing.T) {
	scanRepo := new(mocks.MockCardScanRepo)
	cardSvc := new(mocks.MockCardService)
	var cutoff time.Time

	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Run(func(args mock.Arguments) {
		cutoff = args.Get(1).(time.Time)
	}).Return(0, nil).Once()
	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil)

	before := time.Now().UTC()
	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{
		PollInterval: 20 * time.Millisecond,
		ScanTimeout:  time.Minute,
		StaleAfter:   30 * time.Second,
	})
	runWorker(t, worker, 60*time.Millisecond)

	assert.WithinDuration(t, before.Add(-2*time.Minute), cutoff, time.Second)
}

func TestScanQueueWorker_RequeueErrorStillClaims(t *testing.T) {
	scanRepo := new(mocks.MockCardScanRepo)
	cardSvc := new(mocks.MockCardService)

	scanRepo.On("RequeueStale", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, errors.New("db down"))
	scanRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.CardScan{}, nil)

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{PollInterval: 20 * time.Millisecond})
	runWorker(t, worker, 60*time.Millisecond)

	scanRepo.AssertCalled(t, "ClaimQueued", mock.Anything, 1)
}
