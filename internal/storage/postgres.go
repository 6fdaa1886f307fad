package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/cafecanastra/conteudo/internal/cache"
	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/models"
)

const postsTable = "posts"

var postColumns = []string{
	"id", "slug", "post_type",
	"titulo", "resumo", "conclusao",
	"imagem_destaque", "imagem_destaque_alt",
	"meta_description", "meta_keywords",
	"og_title", "og_description", "og_url",
	"twitter_title", "twitter_description",
	"titulo_ingredientes", "titulo_modo_preparo", "fonte",
	"cta_titulo", "cta_texto",
	"modo", "status",
	"ingredientes", "modo_de_preparo", "dynamic_sections", "legacy_sections",
	"created_at", "updated_at",
}

// Fields the admin patch path may touch.
var allowedUpdateFields = map[string]bool{
	"slug": true, "post_type": true,
	"titulo": true, "resumo": true, "conclusao": true,
	"imagem_destaque": true, "imagem_destaque_alt": true,
	"meta_description": true, "meta_keywords": true,
	"og_title": true, "og_description": true, "og_url": true,
	"twitter_title": true, "twitter_description": true,
	"titulo_ingredientes": true, "titulo_modo_preparo": true, "fonte": true,
	"cta_titulo": true, "cta_texto": true,
	"modo": true, "status": true,
	"ingredientes": true, "modo_de_preparo": true,
	"dynamic_sections": true, "legacy_sections": true,
}

// Fields persisted as JSONB; values arriving through Update are re-marshaled.
var jsonbFields = map[string]bool{
	"ingredientes": true, "modo_de_preparo": true,
	"dynamic_sections": true, "legacy_sections": true,
}

// PostgresStore implements PostStore and ScheduleStore against Postgres.
// With no connection parameters it runs degraded: writes fail with
// ErrUnconfigured, reads return empty results, everything logs a
// configuration warning and nothing crashes.
type PostgresStore struct {
	db       *pgxpool.Pool
	sb       sq.StatementBuilderType
	recent   cache.RecentCache
	cacheTTL time.Duration
}

// NewPostgresStore connects to databaseURL. An empty URL yields a degraded
// store so the service still runs for local development. recent may be nil
// to disable the recent-posts cache.
func NewPostgresStore(ctx context.Context, databaseURL string, recent cache.RecentCache, cacheTTL time.Duration) (*PostgresStore, error) {
	const op = "storage.postgres.NewPostgresStore"

	s := &PostgresStore{
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		recent:   recent,
		cacheTTL: cacheTTL,
	}

	if databaseURL == "" {
		logger.Get().Warn().Msg("DATABASE_URL not set, post store running in degraded no-op mode")
		return s, nil
	}

	db, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.db = db
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresStore) unconfigured(op string) bool {
	if s.db != nil {
		return false
	}
	logger.Get().Warn().Str("op", op).Msg("post store not configured, operation skipped")
	return true
}

func (s *PostgresStore) Insert(ctx context.Context, post *models.Post) (*models.Post, error) {
	const op = "storage.postgres.Insert"

	if s.unconfigured(op) {
		return nil, ErrUnconfigured
	}

	query, args, err := s.sb.Insert(postsTable).
		Columns(
			"slug", "post_type",
			"titulo", "resumo", "conclusao",
			"imagem_destaque", "imagem_destaque_alt",
			"meta_description", "meta_keywords",
			"og_title", "og_description", "og_url",
			"twitter_title", "twitter_description",
			"titulo_ingredientes", "titulo_modo_preparo", "fonte",
			"cta_titulo", "cta_texto",
			"modo", "status",
			"ingredientes", "modo_de_preparo", "dynamic_sections", "legacy_sections",
		).
		Values(
			post.Slug, post.PostType,
			post.Titulo, post.Resumo, post.Conclusao,
			post.ImagemDestaque, post.ImagemAlt,
			post.MetaDescription, post.MetaKeywords,
			post.OgTitle, post.OgDescription, post.OgURL,
			post.TwitterTitle, post.TwitterDesc,
			post.IngredientesTitulo, post.ModoPreparoTitulo, post.Fonte,
			post.CtaTitulo, post.CtaTexto,
			post.Modo, post.Status,
			mustJSON(post.Ingredientes), mustJSON(post.ModoPreparo),
			mustJSON(post.DynamicSections), mustJSON(post.LegacySections),
		).
		Suffix("RETURNING " + strings.Join(postColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := s.scanPost(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateRecent(ctx)
	return saved, nil
}

func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Post, error) {
	const op = "storage.postgres.Update"

	if s.unconfigured(op) {
		return nil, ErrUnconfigured
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%s: no fields to update", op)
	}

	builder := s.sb.Update(postsTable).Set("updated_at", time.Now())
	for field, value := range updates {
		if !allowedUpdateFields[field] {
			return nil, fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}
		if jsonbFields[field] {
			value = mustJSON(value)
		}
		builder = builder.Set(field, value)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(postColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.scanPost(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateRecent(ctx)
	return post, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.Delete"

	if s.unconfigured(op) {
		return ErrUnconfigured
	}

	query, args, err := s.sb.Delete(postsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.invalidateRecent(ctx)
	return nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string, requirePublished bool) (*models.Post, error) {
	const op = "storage.postgres.FindBySlug"

	if s.unconfigured(op) {
		return nil, ErrNotFound
	}

	builder := s.sb.Select(postColumns...).
		From(postsTable).
		Where(sq.Eq{"slug": slug})
	if requirePublished {
		builder = builder.Where(sq.Eq{"status": models.StatusPublished})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.scanPost(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

func (s *PostgresStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	const op = "storage.postgres.ListPublished"

	if s.unconfigured(op) {
		return []models.Post{}, nil
	}
	return s.listPosts(ctx, op, sq.Eq{"status": models.StatusPublished})
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Post, error) {
	const op = "storage.postgres.ListAll"

	if s.unconfigured(op) {
		return []models.Post{}, nil
	}
	return s.listPosts(ctx, op, nil)
}

func (s *PostgresStore) listPosts(ctx context.Context, op string, where interface{}) ([]models.Post, error) {
	builder := s.sb.Select(postColumns...).
		From(postsTable).
		OrderBy("created_at DESC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := s.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// ListRecent serves the light sidebar projection, cache-aside through Redis
// when configured.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.PostSummary, error) {
	const op = "storage.postgres.ListRecent"

	if limit < 1 || limit > 50 {
		limit = 5
	}

	if s.recent != nil {
		if cached, ok := s.recent.GetRecent(ctx, limit); ok {
			return cached, nil
		}
	}

	if s.unconfigured(op) {
		return []models.PostSummary{}, nil
	}

	query, args, err := s.sb.Select("id", "titulo", "slug", "created_at").
		From(postsTable).
		Where(sq.Eq{"status": models.StatusPublished}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	summaries := []models.PostSummary{}
	for rows.Next() {
		var sum models.PostSummary
		if err := rows.Scan(&sum.ID, &sum.Titulo, &sum.Slug, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.recent != nil {
		s.recent.SetRecent(ctx, limit, summaries, s.cacheTTL)
	}
	return summaries, nil
}

func (s *PostgresStore) invalidateRecent(ctx context.Context) {
	if s.recent != nil {
		s.recent.InvalidateRecent(ctx)
	}
}

// scanPost reads one row laid out as postColumns.
func (s *PostgresStore) scanPost(row pgx.Row) (*models.Post, error) {
	var (
		post     models.Post
		postType sql.NullString
		ingB     []byte
		prepB    []byte
		dynB     []byte
		legB     []byte
	)

	err := row.Scan(
		&post.ID, &post.Slug, &postType,
		&post.Titulo, &post.Resumo, &post.Conclusao,
		&post.ImagemDestaque, &post.ImagemAlt,
		&post.MetaDescription, &post.MetaKeywords,
		&post.OgTitle, &post.OgDescription, &post.OgURL,
		&post.TwitterTitle, &post.TwitterDesc,
		&post.IngredientesTitulo, &post.ModoPreparoTitulo, &post.Fonte,
		&post.CtaTitulo, &post.CtaTexto,
		&post.Modo, &post.Status,
		&ingB, &prepB, &dynB, &legB,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if postType.Valid {
		post.PostType = &postType.String
	}

	if err := unmarshalGroup(ingB, &post.Ingredientes); err != nil {
		return nil, err
	}
	if err := unmarshalGroup(prepB, &post.ModoPreparo); err != nil {
		return nil, err
	}
	if err := unmarshalGroup(dynB, &post.DynamicSections); err != nil {
		return nil, err
	}
	if err := unmarshalGroup(legB, &post.LegacySections); err != nil {
		return nil, err
	}

	return &post, nil
}

// mustJSON marshals a sparse field group for a JSONB column. The groups are
// plain maps of strings; marshaling cannot fail for them.
func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func unmarshalGroup(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
