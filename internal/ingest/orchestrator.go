package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/normalizer"
	"github.com/cafecanastra/conteudo/internal/storage"
)

// Generator produces post payloads from the upstream content generators.
type Generator interface {
	Generate(ctx context.Context, req models.ScheduledTrigger) ([]map[string]any, error)
}

// Gate decides whether a scheduled trigger may generate right now.
type Gate interface {
	CheckEligibility(ctx context.Context) (ok bool, reason, currentTime, allowedTime string)
}

// Orchestrator drives ingestion: webhook payloads go straight through
// normalize-and-insert; scheduled triggers are gated, then run as sequential
// generation cycles against the upstream generators.
type Orchestrator struct {
	store      storage.PostStore
	norm       *normalizer.Normalizer
	gen        Generator
	gate       Gate
	cycleDelay time.Duration

	// sleep is injectable so tests don't wait out real delays.
	sleep func(ctx context.Context, d time.Duration)
}

func NewOrchestrator(store storage.PostStore, norm *normalizer.Normalizer, gen Generator, gate Gate, cycleDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		store:      store,
		norm:       norm,
		gen:        gen,
		gate:       gate,
		cycleDelay: cycleDelay,
		sleep:      sleepCtx,
	}
}

// IngestWebhook normalizes and persists a batch of externally supplied post
// payloads in array order. One item's store failure is recorded and does not
// abort the rest.
func (o *Orchestrator) IngestWebhook(ctx context.Context, payloads []map[string]any, modo string) models.IngestResult {
	result := models.IngestResult{Results: []models.PostOutcome{}}

	for i, raw := range payloads {
		result.Results = append(result.Results, o.persistOne(ctx, i, raw, modo))
		if result.Results[len(result.Results)-1].OK {
			result.CreatedPosts++
		}
	}

	result.Success = result.CreatedPosts > 0 || len(payloads) == 0
	result.Message = fmt.Sprintf("%d of %d posts created", result.CreatedPosts, len(payloads))
	return result
}

// IngestScheduled consults the schedule gate, then runs the trigger's cycle
// count sequentially with a fixed delay between cycles. A failed cycle is
// recorded and subsequent cycles still run.
func (o *Orchestrator) IngestScheduled(ctx context.Context, trigger models.ScheduledTrigger) models.IngestResult {
	ok, reason, currentTime, allowedTime := o.gate.CheckEligibility(ctx)
	if !ok {
		logger.Get().Info().
			Str("reason", reason).
			Str("current_time", currentTime).
			Str("allowed_time", allowedTime).
			Msg("scheduled generation rejected")

		return models.IngestResult{
			Success:     false,
			Reason:      reason,
			CurrentTime: currentTime,
			AllowedTime: allowedTime,
			Results:     []models.PostOutcome{},
		}
	}

	if trigger.Modo == "" {
		trigger.Modo = models.ModoAutomatico
	}
	cycles := trigger.Quantidade
	if cycles < 1 {
		cycles = 1
	}

	delay := o.cycleDelay
	if trigger.Atraso > 0 {
		delay = time.Duration(trigger.Atraso) * time.Second
	}

	result := models.IngestResult{Results: []models.PostOutcome{}}
	index := 0

	for cycle := 0; cycle < cycles; cycle++ {
		payloads, err := o.gen.Generate(ctx, trigger)
		if err != nil {
			logger.Get().Error().Err(err).Int("cycle", cycle).Msg("generation cycle failed")
			result.Results = append(result.Results, models.PostOutcome{
				Index: index,
				OK:    false,
				Error: err.Error(),
			})
			index++
		} else {
			for _, raw := range payloads {
				outcome := o.persistOne(ctx, index, raw, trigger.Modo)
				result.Results = append(result.Results, outcome)
				if outcome.OK {
					result.CreatedPosts++
				}
				index++
			}
		}

		// Deliberate pacing between cycles; never after the last one.
		if cycle < cycles-1 {
			o.sleep(ctx, delay)
		}
	}

	result.Success = result.CreatedPosts > 0
	result.Message = fmt.Sprintf("%d posts created over %d cycles", result.CreatedPosts, cycles)
	return result
}

// persistOne runs one payload through the normalizer and the store.
func (o *Orchestrator) persistOne(ctx context.Context, index int, raw map[string]any, modo string) models.PostOutcome {
	post := o.norm.Normalize(raw)
	if post.Modo == "" {
		post.Modo = modo
	}

	saved, err := o.store.Insert(ctx, post)
	if err != nil {
		logger.Get().Error().
			Err(err).
			Str("slug", post.Slug).
			Int("index", index).
			Msg("failed to persist post")

		return models.PostOutcome{
			Index:  index,
			Slug:   post.Slug,
			Titulo: post.Titulo,
			OK:     false,
			Error:  err.Error(),
		}
	}

	logger.Get().Info().
		Str("slug", saved.Slug).
		Str("id", saved.ID.String()).
		Msg("post created")

	return models.PostOutcome{
		Index:  index,
		Slug:   saved.Slug,
		Titulo: saved.Titulo,
		OK:     true,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
