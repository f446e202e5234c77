package scanner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mu    sync.Mutex
	calls [][]domain.ArbitrageOpportunity
	err   error
}

func (m *mockNotifier) Notify(_ context.Context, opps []domain.ArbitrageOpportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, opps)
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockStorage struct {
	mu    sync.Mutex
	saved [][]domain.ArbitrageOpportunity
	err   error
}

func (m *mockStorage) SaveScan(_ context.Context, opps []domain.ArbitrageOpportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, opps)
	return m.err
}

func (m *mockStorage) GetHistory(_ context.Context, _, _ time.Time) ([]domain.ArbitrageOpportunity, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func TestRunner_DryRunSingleCycle(t *testing.T) {
	notifier := &mockNotifier{}
	storage := &mockStorage{}
	as := adapters(
		adapterFor(domain.PlatformAmazon, product(domain.PlatformAmazon, "a1", "Echo Dot", 10)),
		adapterFor(domain.PlatformEBay, product(domain.PlatformEBay, "e1", "Echo Dot", 30)),
	)

	r := scanner.NewRunner(
		scanner.RunnerConfig{Interval: time.Millisecond, Options: opts(10), DryRun: true},
		newTestScanner(), as, storage, notifier,
	)

	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 1, notifier.count())
	require.Equal(t, 1, storage.count())
	require.Len(t, notifier.calls[0], 1)
	assert.Equal(t, domain.PlatformAmazon, notifier.calls[0][0].BuyPlatform)
	assert.Equal(t, notifier.calls[0], storage.saved[0])
}

func TestRunner_NilStorage(t *testing.T) {
	notifier := &mockNotifier{}
	r := scanner.NewRunner(
		scanner.RunnerConfig{Options: opts(0), DryRun: true},
		newTestScanner(), nil, nil, notifier,
	)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1, notifier.count())
	assert.Empty(t, notifier.calls[0])
}

func TestRunner_SinkErrorsDoNotFailCycle(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("stdout closed")}
	storage := &mockStorage{err: errors.New("disk full")}
	r := scanner.NewRunner(
		scanner.RunnerConfig{Options: opts(0), DryRun: true},
		newTestScanner(), nil, storage, notifier,
	)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, storage.count())
}

func TestRunner_DryRunPropagatesConfigError(t *testing.T) {
	fees := domain.NewFeeModel(domain.FeeTable{})
	s := scanner.New(scanner.DefaultConfig(), fees, nil, nil)
	as := adapters(adapterFor(domain.PlatformAmazon))

	r := scanner.NewRunner(scanner.RunnerConfig{DryRun: true}, s, as, nil, nil)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingFeeSchedule)
}

func TestRunner_LoopStopsOnCancel(t *testing.T) {
	notifier := &mockNotifier{}
	r := scanner.NewRunner(
		scanner.RunnerConfig{Interval: 10 * time.Millisecond, Options: opts(0)},
		newTestScanner(), nil, nil, notifier,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return notifier.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_RunOnce(t *testing.T) {
	as := adapters(
		adapterFor(domain.PlatformAmazon, product(domain.PlatformAmazon, "a1", "x", 10)),
		adapterFor(domain.PlatformEBay, product(domain.PlatformEBay, "e1", "x", 30)),
	)
	r := scanner.NewRunner(scanner.RunnerConfig{Options: opts(10)}, newTestScanner(), as, nil, nil)

	opps, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, opps, 1)
}
