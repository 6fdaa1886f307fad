package models

// Rejection reasons for scheduled ingestion.
const (
	RejectDisabled        = "disabled"
	RejectOutsideSchedule = "outside_schedule"
)

// PostOutcome records the fate of one post payload within an ingestion batch.
type PostOutcome struct {
	Index  int    `json:"index"`
	Slug   string `json:"slug,omitempty"`
	Titulo string `json:"titulo,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// IngestResult aggregates an ingestion attempt. A soft rejection from the
// schedule gate sets Success=false and Reason without any outcomes.
type IngestResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	CreatedPosts int           `json:"createdPosts"`
	Results      []PostOutcome `json:"results"`

	// Set only for schedule-gate rejections.
	Reason      string `json:"reason,omitempty"`
	CurrentTime string `json:"currentTime,omitempty"`
	AllowedTime string `json:"allowedTime,omitempty"`
}

// ScheduledTrigger is the body of a scheduled-generation call, forwarded to
// the upstream generators.
type ScheduledTrigger struct {
	Modo        string `json:"modo,omitempty"`
	Quantidade  int    `json:"quantidade,omitempty"`
	Atraso      int    `json:"atraso,omitempty"`
	Tema        string `json:"tema,omitempty"`
	PublicoAlvo string `json:"publico_alvo,omitempty"`
}
