package models

import "time"

// ScheduleConfig is the singleton-like automatic generation config. Each save
// inserts a fresh row; the latest row by updated_at is authoritative.
type ScheduleConfig struct {
	IsEnabled   bool      `json:"isEnabled"`
	StartHour   int       `json:"startHour" validate:"gte=0,lte=23"`
	EndHour     int       `json:"endHour" validate:"gte=0,lte=23"`
	Modo        string    `json:"modo" validate:"oneof=automático personalizado"`
	Tema        string    `json:"tema,omitempty"`
	PublicoAlvo string    `json:"publico_alvo,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// DefaultScheduleConfig is returned when no config row exists or the durable
// store is unavailable.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		IsEnabled: false,
		StartHour: 7,
		EndHour:   10,
		Modo:      ModoAutomatico,
	}
}

// ScheduleConfigPatch carries a partial config update; nil fields keep the
// current value.
type ScheduleConfigPatch struct {
	IsEnabled   *bool   `json:"isEnabled,omitempty"`
	StartHour   *int    `json:"startHour,omitempty" validate:"omitempty,gte=0,lte=23"`
	EndHour     *int    `json:"endHour,omitempty" validate:"omitempty,gte=0,lte=23"`
	Modo        *string `json:"modo,omitempty" validate:"omitempty,oneof=automático personalizado"`
	Tema        *string `json:"tema,omitempty"`
	PublicoAlvo *string `json:"publico_alvo,omitempty"`
}
