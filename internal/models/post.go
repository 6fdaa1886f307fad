package models

import (
	"time"

	"github.com/google/uuid"
)

// Post types. An empty/nil PostType means a plain article.
const (
	PostTypeRecipe = "recipe"
	PostTypeNews   = "news"
)

// Post statuses.
const (
	StatusPublished = "publicado"
	StatusDraft     = "rascunho"
)

// Generation modes.
const (
	ModoAutomatico    = "automático"
	ModoPersonalizado = "personalizado"
)

// Bounds for the sparse numbered field groups. Indices are probed
// independently: absence at index i says nothing about index i+1.
const (
	MaxIngredientes    = 15
	MaxModoPreparo     = 15
	MaxDynamicSections = 10
	MaxLegacySections  = 7
)

// SparseList is a sparse, 1-indexed sequence of strings. It is persisted as
// JSONB and serialized with string keys.
type SparseList map[int]string

// DynamicSection is one (subtitle, paragraph) pair of the flexible content
// shape shared by recipe and news posts.
type DynamicSection struct {
	Subtitulo string `json:"subtitulo,omitempty"`
	Paragrafo string `json:"paragrafo,omitempty"`
}

// LegacySection is one numbered section of the fixed legacy shape. Only
// sections 3 and 6 ever carry an image.
type LegacySection struct {
	Subtitulo string `json:"subtitulo,omitempty"`
	Texto     string `json:"texto,omitempty"`
	Imagem    string `json:"imagem,omitempty"`
	ImagemAlt string `json:"imagem_alt,omitempty"`
}

// Post is the central persisted entity. Type-conditional field groups are
// meaningful only when PostType matches; the normalizer never cross-populates.
type Post struct {
	ID       uuid.UUID `json:"id"`
	Slug     string    `json:"slug"`
	PostType *string   `json:"post_type"`

	Titulo           string `json:"titulo"`
	Resumo           string `json:"resumo,omitempty"`
	Conclusao        string `json:"conclusao,omitempty"`
	ImagemDestaque   string `json:"imagem_destaque,omitempty"`
	ImagemAlt        string `json:"imagem_destaque_alt,omitempty"`

	// SEO shadow fields, each falling back to a content field when absent.
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
	OgTitle         string `json:"og_title,omitempty"`
	OgDescription   string `json:"og_description,omitempty"`
	OgURL           string `json:"og_url,omitempty"`
	TwitterTitle    string `json:"twitter_title,omitempty"`
	TwitterDesc     string `json:"twitter_description,omitempty"`

	// Recipe fields.
	IngredientesTitulo string     `json:"titulo_ingredientes,omitempty"`
	ModoPreparoTitulo  string     `json:"titulo_modo_preparo,omitempty"`
	Ingredientes       SparseList `json:"ingredientes,omitempty"`
	ModoPreparo        SparseList `json:"modo_de_preparo,omitempty"`

	// News fields.
	Fonte string `json:"fonte,omitempty"`

	// Shared dynamic shape (recipe and news).
	DynamicSections map[int]DynamicSection `json:"dynamic_sections,omitempty"`

	// Legacy fixed shape, populated regardless of post type.
	LegacySections map[int]LegacySection `json:"legacy_sections,omitempty"`

	CtaTitulo string `json:"cta_titulo,omitempty"`
	CtaTexto  string `json:"cta_texto,omitempty"`

	Modo      string    `json:"modo,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRecipe reports whether the post carries the recipe field groups.
func (p *Post) IsRecipe() bool {
	return p.PostType != nil && *p.PostType == PostTypeRecipe
}

// IsNews reports whether the post carries the news field groups.
func (p *Post) IsNews() bool {
	return p.PostType != nil && *p.PostType == PostTypeNews
}

// PostSummary is the light projection served to sidebar/related-post
// consumers.
type PostSummary struct {
	ID        uuid.UUID `json:"id"`
	Titulo    string    `json:"titulo"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
