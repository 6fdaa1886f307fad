package schedule

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/storage"
)

const localKey = "schedule_config"

// Manager holds the schedule config behind a process-local cache. The
// durable store is the source of truth; the local cache gives immediate
// feedback after saves and keeps the gate usable through transient store
// failures. The cache is not shared across instances.
type Manager struct {
	store storage.ScheduleStore
	local *gocache.Cache

	// Now is injectable for tests.
	Now func() time.Time
}

func NewManager(store storage.ScheduleStore) *Manager {
	return &Manager{
		store: store,
		local: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
		Now:   time.Now,
	}
}

// GetConfig returns the cached config, falling back to the durable store and
// finally to the fixed default (disabled, 07:00-10:00, automático).
func (m *Manager) GetConfig(ctx context.Context) models.ScheduleConfig {
	if v, ok := m.local.Get(localKey); ok {
		return v.(models.ScheduleConfig)
	}

	cfg, err := m.store.LatestConfig(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Get().Warn().Err(err).Msg("failed to load schedule config, using default")
		}
		return models.DefaultScheduleConfig()
	}

	m.local.Set(localKey, *cfg, gocache.NoExpiration)
	return *cfg
}

// SaveConfig writes to the durable store and mirrors to the local cache.
// Policy: the local cache is updated even when the durable write fails, so
// the caller-visible config always reflects the latest intent; the failure
// is a warning, not an error.
func (m *Manager) SaveConfig(ctx context.Context, cfg models.ScheduleConfig) models.ScheduleConfig {
	cfg.UpdatedAt = m.Now()

	if err := m.store.SaveConfig(ctx, cfg); err != nil {
		logger.Get().Warn().Err(err).Msg("durable schedule-config write failed, keeping local value")
	}

	m.local.Set(localKey, cfg, gocache.NoExpiration)
	return cfg
}

// UpdateConfig merges a partial update over the current config and saves.
func (m *Manager) UpdateConfig(ctx context.Context, patch models.ScheduleConfigPatch) models.ScheduleConfig {
	cfg := m.GetConfig(ctx)

	if patch.IsEnabled != nil {
		cfg.IsEnabled = *patch.IsEnabled
	}
	if patch.StartHour != nil {
		cfg.StartHour = *patch.StartHour
	}
	if patch.EndHour != nil {
		cfg.EndHour = *patch.EndHour
	}
	if patch.Modo != nil {
		cfg.Modo = *patch.Modo
	}
	if patch.Tema != nil {
		cfg.Tema = *patch.Tema
	}
	if patch.PublicoAlvo != nil {
		cfg.PublicoAlvo = *patch.PublicoAlvo
	}

	return m.SaveConfig(ctx, cfg)
}

// CheckEligibility evaluates the gate against the current config. When not
// eligible it returns the rejection reason plus the data a caller needs to
// explain it.
func (m *Manager) CheckEligibility(ctx context.Context) (ok bool, reason, currentTime, allowedTime string) {
	cfg := m.GetConfig(ctx)
	now := m.Now()

	if !cfg.IsEnabled {
		return false, models.RejectDisabled, Clock(now), Window(cfg)
	}
	if !IsEligible(cfg, now) {
		return false, models.RejectOutsideSchedule, Clock(now), Window(cfg)
	}
	return true, "", Clock(now), Window(cfg)
}

// StartReconciler periodically overwrites the local cache from the durable
// store until ctx is done. Transient fetch failures keep the previous cached
// value.
func (m *Manager) StartReconciler(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cfg, err := m.store.LatestConfig(ctx)
				if err != nil {
					if !errors.Is(err, storage.ErrNotFound) {
						logger.Get().Warn().Err(err).Msg("schedule config reconciliation failed")
					}
					continue
				}
				m.local.Set(localKey, *cfg, gocache.NoExpiration)
			}
		}
	}()
}
