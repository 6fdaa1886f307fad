package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cafecanastra/conteudo/internal/config"
	"github.com/cafecanastra/conteudo/internal/ingest"
	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/media"
	"github.com/cafecanastra/conteudo/internal/middleware"
	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/schedule"
	"github.com/cafecanastra/conteudo/internal/storage"
)

type Handlers struct {
	config   *config.Config
	store    storage.PostStore
	schedule *schedule.Manager
	orch     *ingest.Orchestrator
	uploader *media.Uploader
}

func NewHandlers(cfg *config.Config, store storage.PostStore, sched *schedule.Manager, orch *ingest.Orchestrator, uploader *media.Uploader) *Handlers {
	return &Handlers{
		config:   cfg,
		store:    store,
		schedule: sched,
		orch:     orch,
		uploader: uploader,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListPublishedPosts handles GET /posts
func (h *Handlers) ListPublishedPosts(c *fiber.Ctx) error {
	posts, err := h.store.ListPublished(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing published posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list posts",
		})
	}

	return c.JSON(fiber.Map{
		"total": len(posts),
		"items": posts,
	})
}

// GetPostBySlug handles GET /posts/:slug. Drafts are invisible here.
func (h *Handlers) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post slug is required",
		})
	}

	post, err := h.store.FindBySlug(c.Context(), slug, true)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Get().Error().Err(err).Str("slug", slug).Msg("Error getting post")
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}

	return c.JSON(post)
}

// ListRecentPosts handles GET /posts/recent
func (h *Handlers) ListRecentPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	summaries, err := h.store.ListRecent(c.Context(), limit)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing recent posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list recent posts",
		})
	}

	return c.JSON(fiber.Map{
		"total": len(summaries),
		"items": summaries,
	})
}

// IngestWebhook handles POST /webhook/posts. The body is either one
// post-shaped object or an array of them.
func (h *Handlers) IngestWebhook(c *fiber.Ctx) error {
	payloads, err := parseWebhookBody(c.Body())
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Invalid webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Body must be a post object or an array of post objects",
		})
	}

	modo := c.Query("modo", models.ModoAutomatico)
	result := h.orch.IngestWebhook(c.Context(), payloads, modo)
	return c.JSON(result)
}

// IngestScheduled handles POST /webhook/scheduled. Soft rejections from the
// schedule gate come back as 200 with success:false and a reason.
func (h *Handlers) IngestScheduled(c *fiber.Ctx) error {
	var trigger models.ScheduledTrigger
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&trigger); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid trigger body: " + err.Error(),
			})
		}
	}

	result := h.orch.IngestScheduled(c.Context(), trigger)
	return c.JSON(result)
}

// GetScheduleConfig handles GET /admin/schedule
func (h *Handlers) GetScheduleConfig(c *fiber.Ctx) error {
	return c.JSON(h.schedule.GetConfig(c.Context()))
}

// PutScheduleConfig handles PUT /admin/schedule with a full config.
func (h *Handlers) PutScheduleConfig(c *fiber.Ctx) error {
	var cfg models.ScheduleConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	if fields := middleware.ValidationFields(cfg); fields != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	return c.JSON(h.schedule.SaveConfig(c.Context(), cfg))
}

// PatchScheduleConfig handles PATCH /admin/schedule with a partial config.
func (h *Handlers) PatchScheduleConfig(c *fiber.Ctx) error {
	var patch models.ScheduleConfigPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	if fields := middleware.ValidationFields(patch); fields != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	return c.JSON(h.schedule.UpdateConfig(c.Context(), patch))
}

// ListAllPosts handles GET /admin/posts. The only read path that sees drafts.
func (h *Handlers) ListAllPosts(c *fiber.Ctx) error {
	posts, err := h.store.ListAll(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list posts",
		})
	}

	return c.JSON(fiber.Map{
		"total": len(posts),
		"items": posts,
	})
}

// UpdatePost handles PATCH /admin/posts/:id with a field-level patch.
func (h *Handlers) UpdatePost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post ID",
		})
	}

	var updates map[string]interface{}
	if err := json.Unmarshal(c.Body(), &updates); err != nil || len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Body must be a non-empty object of fields to update",
		})
	}

	post, err := h.store.Update(c.Context(), id, updates)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		logger.Get().Error().Err(err).Str("id", id.String()).Msg("Error updating post")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to update post: " + err.Error(),
		})
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /admin/posts/:id
func (h *Handlers) DeletePost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post ID",
		})
	}

	if err := h.store.Delete(c.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		logger.Get().Error().Err(err).Str("id", id.String()).Msg("Error deleting post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete post",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadPostImage handles POST /admin/posts/:id/image. Step one of the
// two-step image replacement: the binary goes to object storage, then its
// URL is patched onto the post.
func (h *Handlers) UploadPostImage(c *fiber.Ctx) error {
	if h.uploader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Media storage is not configured",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post ID",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "An 'image' file field is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Image upload failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to store image",
		})
	}

	updates := map[string]interface{}{"imagem_destaque": url}
	if alt := c.FormValue("alt"); alt != "" {
		updates["imagem_destaque_alt"] = alt
	}

	post, err := h.store.Update(c.Context(), id, updates)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		logger.Get().Error().Err(err).Str("id", id.String()).Msg("Error attaching image to post")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Image stored but post update failed",
			"url":   url,
		})
	}

	return c.JSON(fiber.Map{
		"url":  url,
		"post": post,
	})
}

// parseWebhookBody accepts a single post object or an array, normalizing to
// a slice.
func parseWebhookBody(body []byte) ([]map[string]any, error) {
	var many []map[string]any
	if err := json.Unmarshal(body, &many); err == nil {
		return many, nil
	}

	var single map[string]any
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []map[string]any{single}, nil
}
