package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/storage"
)

type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) SaveConfig(ctx context.Context, cfg models.ScheduleConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockScheduleStore) LatestConfig(ctx context.Context) (*models.ScheduleConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleConfig), args.Error(1)
}

func TestManagerGetConfigDefault(t *testing.T) {
	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(nil, storage.ErrNotFound)

	m := NewManager(store)
	cfg := m.GetConfig(context.Background())

	assert.Equal(t, models.DefaultScheduleConfig(), cfg)
	store.AssertExpectations(t)
}

func TestManagerGetConfigFromStore(t *testing.T) {
	stored := &models.ScheduleConfig{IsEnabled: true, StartHour: 6, EndHour: 12, Modo: models.ModoAutomatico}
	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(stored, nil).Once()

	m := NewManager(store)
	ctx := context.Background()

	assert.Equal(t, *stored, m.GetConfig(ctx))

	// Second read hits the local cache; the store is not consulted again.
	assert.Equal(t, *stored, m.GetConfig(ctx))
	store.AssertExpectations(t)
}

func TestManagerSaveConfigMirrorsToCacheOnDurableFailure(t *testing.T) {
	store := new(MockScheduleStore)
	store.On("SaveConfig", mock.Anything, mock.AnythingOfType("models.ScheduleConfig")).
		Return(errors.New("connection refused"))

	m := NewManager(store)
	m.Now = func() time.Time { return at(9, 0) }
	ctx := context.Background()

	want := models.ScheduleConfig{IsEnabled: true, StartHour: 8, EndHour: 11, Modo: models.ModoAutomatico}
	saved := m.SaveConfig(ctx, want)

	// The caller-visible config reflects the latest intent even though the
	// durable write failed.
	assert.True(t, saved.IsEnabled)
	got := m.GetConfig(ctx)
	assert.Equal(t, want.StartHour, got.StartHour)
	assert.Equal(t, want.EndHour, got.EndHour)
	store.AssertExpectations(t)
}

func TestManagerUpdateConfigMerges(t *testing.T) {
	stored := &models.ScheduleConfig{IsEnabled: false, StartHour: 7, EndHour: 10, Modo: models.ModoAutomatico, Tema: "café especial"}
	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(stored, nil).Once()
	store.On("SaveConfig", mock.Anything, mock.AnythingOfType("models.ScheduleConfig")).Return(nil)

	m := NewManager(store)
	ctx := context.Background()

	enabled := true
	end := 14
	got := m.UpdateConfig(ctx, models.ScheduleConfigPatch{IsEnabled: &enabled, EndHour: &end})

	assert.True(t, got.IsEnabled)
	assert.Equal(t, 7, got.StartHour)
	assert.Equal(t, 14, got.EndHour)
	assert.Equal(t, "café especial", got.Tema)
	store.AssertExpectations(t)
}

func TestManagerCheckEligibility(t *testing.T) {
	stored := &models.ScheduleConfig{IsEnabled: true, StartHour: 7, EndHour: 10, Modo: models.ModoAutomatico}
	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(stored, nil)

	m := NewManager(store)
	ctx := context.Background()

	m.Now = func() time.Time { return at(11, 0) }
	ok, reason, currentTime, allowedTime := m.CheckEligibility(ctx)
	require.False(t, ok)
	assert.Equal(t, models.RejectOutsideSchedule, reason)
	assert.Equal(t, "11:00", currentTime)
	assert.Equal(t, "07:00-10:00", allowedTime)

	m.Now = func() time.Time { return at(8, 0) }
	ok, reason, _, _ = m.CheckEligibility(ctx)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestManagerCheckEligibilityDisabled(t *testing.T) {
	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(nil, storage.ErrNotFound)

	m := NewManager(store)
	ok, reason, _, allowedTime := m.CheckEligibility(context.Background())

	assert.False(t, ok)
	assert.Equal(t, models.RejectDisabled, reason)
	assert.Equal(t, "07:00-10:00", allowedTime)
}

func TestManagerReconcilerOverwritesLocalCache(t *testing.T) {
	first := &models.ScheduleConfig{IsEnabled: false, StartHour: 7, EndHour: 10, Modo: models.ModoAutomatico}
	second := &models.ScheduleConfig{IsEnabled: true, StartHour: 5, EndHour: 22, Modo: models.ModoAutomatico}

	store := new(MockScheduleStore)
	store.On("LatestConfig", mock.Anything).Return(first, nil).Once()
	store.On("LatestConfig", mock.Anything).Return(second, nil)

	m := NewManager(store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Equal(t, *first, m.GetConfig(ctx))

	m.StartReconciler(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return m.GetConfig(ctx).IsEnabled
	}, time.Second, 10*time.Millisecond)
}
