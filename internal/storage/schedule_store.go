package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/cafecanastra/conteudo/internal/models"
)

const scheduleTable = "schedule_config"

// SaveConfig appends a fresh config row. The read path keeps only the latest
// by updated_at, so saves fully replace previous intent without updates in
// place.
func (s *PostgresStore) SaveConfig(ctx context.Context, cfg models.ScheduleConfig) error {
	const op = "storage.postgres.SaveConfig"

	if s.unconfigured(op) {
		return ErrUnconfigured
	}

	updatedAt := cfg.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query, args, err := s.sb.Insert(scheduleTable).
		Columns("is_enabled", "start_hour", "end_hour", "modo", "tema", "publico_alvo", "updated_at").
		Values(cfg.IsEnabled, cfg.StartHour, cfg.EndHour, cfg.Modo, cfg.Tema, cfg.PublicoAlvo, updatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LatestConfig returns the most recently saved config row, or ErrNotFound
// when none exists.
func (s *PostgresStore) LatestConfig(ctx context.Context) (*models.ScheduleConfig, error) {
	const op = "storage.postgres.LatestConfig"

	if s.unconfigured(op) {
		return nil, ErrNotFound
	}

	query, args, err := s.sb.Select("is_enabled", "start_hour", "end_hour", "modo", "tema", "publico_alvo", "updated_at").
		From(scheduleTable).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg models.ScheduleConfig
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&cfg.IsEnabled, &cfg.StartHour, &cfg.EndHour,
		&cfg.Modo, &cfg.Tema, &cfg.PublicoAlvo, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}
