package normalizer

import (
	"strings"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/utils"
)

// PlaceholderTitle is assigned when the payload carries no usable title.
const PlaceholderTitle = "Post sem título"

// Normalizer converts an arbitrarily-keyed generator payload into a
// fixed-schema Post. It is a best-effort structural copy: no validation, no
// sanitization, no slug uniqueness. Absent fields stay absent.
type Normalizer struct {
	siteBaseURL string
}

// New returns a Normalizer. siteBaseURL feeds the canonical og:url default.
func New(siteBaseURL string) *Normalizer {
	return &Normalizer{siteBaseURL: strings.TrimRight(siteBaseURL, "/")}
}

// Normalize is total: any payload, including an empty map, yields a valid
// record with a non-empty title and slug. It never fails.
func (n *Normalizer) Normalize(raw map[string]any) *models.Post {
	post := &models.Post{}

	post.Titulo = stringAtOr(raw, keyTitulo, PlaceholderTitle)
	post.Slug = utils.Slugify(post.Titulo)

	// post_type passes through verbatim and stays nullable.
	if pt, ok := stringAt(raw, keyPostType); ok {
		post.PostType = &pt
	}

	post.Resumo, _ = stringAt(raw, keyResumo)
	post.Conclusao, _ = stringAt(raw, keyConclusao)
	post.ImagemDestaque, _ = stringAt(raw, keyImagemDestaque)
	post.ImagemAlt, _ = stringAt(raw, keyImagemDestaqueAlt)

	post.Status = stringAtOr(raw, keyStatus, models.StatusPublished)
	post.Modo, _ = stringAt(raw, keyModo)

	n.fillSEO(raw, post)

	switch {
	case post.IsRecipe():
		post.IngredientesTitulo, _ = stringAt(raw, keyIngredientesTitulo)
		post.ModoPreparoTitulo, _ = stringAt(raw, keyModoPreparoTitulo)
		post.Ingredientes = sweepSparse(raw, keyIngrediente, models.MaxIngredientes)
		post.ModoPreparo = sweepSparse(raw, keyModoPreparo, models.MaxModoPreparo)
		post.DynamicSections = sweepDynamic(raw)
	case post.IsNews():
		post.Fonte, _ = stringAt(raw, keyFonte)
		post.DynamicSections = sweepDynamic(raw)
	}

	// The legacy section sweep runs for every post type. Legacy posts predate
	// the discriminator; keep this unconditional.
	post.LegacySections = sweepLegacy(raw)
	post.CtaTitulo, _ = stringAt(raw, keyCtaTitulo)
	post.CtaTexto, _ = stringAt(raw, keyCtaTexto)

	logger.Get().Debug().
		Str("slug", post.Slug).
		Int("legacy_sections", len(post.LegacySections)).
		Int("dynamic_sections", len(post.DynamicSections)).
		Msg("normalized payload")

	return post
}

// fillSEO applies the fallback chains: explicit SEO key, then content
// equivalent, then computed default.
func (n *Normalizer) fillSEO(raw map[string]any, post *models.Post) {
	post.MetaDescription = stringAtOr(raw, keyMetaDescription, post.Resumo)
	post.MetaKeywords, _ = stringAt(raw, keyMetaKeywords)
	post.OgTitle = stringAtOr(raw, keyOgTitle, post.Titulo)
	post.OgDescription = stringAtOr(raw, keyOgDescription, post.MetaDescription)
	post.OgURL = stringAtOr(raw, keyOgURL, n.canonicalURL(post.Slug))
	post.TwitterTitle = stringAtOr(raw, keyTwitterTitle, post.OgTitle)
	post.TwitterDesc = stringAtOr(raw, keyTwitterDesc, post.OgDescription)
}

func (n *Normalizer) canonicalURL(slug string) string {
	return n.siteBaseURL + "/blog/" + slug
}

// sweepSparse probes keyFn(1..bound) independently and collects the hits.
func sweepSparse(raw map[string]any, keyFn func(int) string, bound int) models.SparseList {
	var list models.SparseList
	for i := 1; i <= bound; i++ {
		v, ok := stringAt(raw, keyFn(i))
		if !ok {
			continue
		}
		if list == nil {
			list = make(models.SparseList)
		}
		list[i] = v
	}
	return list
}

// sweepDynamic collects the 1..10 (subtitle, paragraph) pairs. A pair is kept
// when either half is present.
func sweepDynamic(raw map[string]any) map[int]models.DynamicSection {
	var sections map[int]models.DynamicSection
	for i := 1; i <= models.MaxDynamicSections; i++ {
		sub, okSub := stringAt(raw, keySubtitulo(i))
		par, okPar := stringAt(raw, keyParagrafo(i))
		if !okSub && !okPar {
			continue
		}
		if sections == nil {
			sections = make(map[int]models.DynamicSection)
		}
		sections[i] = models.DynamicSection{Subtitulo: sub, Paragrafo: par}
	}
	return sections
}

// sweepLegacy collects the 1..7 fixed sections. Subtitle and text are probed
// independently; image and alt only exist for sections 3 and 6.
func sweepLegacy(raw map[string]any) map[int]models.LegacySection {
	var sections map[int]models.LegacySection
	for i := 1; i <= models.MaxLegacySections; i++ {
		sub, okSub := stringAt(raw, keyLegacySubtitulo(i))
		txt, okTxt := stringAt(raw, keyLegacyTexto(i))

		var img, alt string
		var okImg, okAlt bool
		if legacySectionHasImage(i) {
			img, okImg = stringAt(raw, keyLegacyImagem(i))
			alt, okAlt = stringAt(raw, keyLegacyImagemAlt(i))
		}

		if !okSub && !okTxt && !okImg && !okAlt {
			continue
		}
		if sections == nil {
			sections = make(map[int]models.LegacySection)
		}
		sections[i] = models.LegacySection{
			Subtitulo: sub,
			Texto:     txt,
			Imagem:    img,
			ImagemAlt: alt,
		}
	}
	return sections
}

// stringAt fetches a non-empty string value. Non-string values are ignored,
// matching the generator contract of "strings or absent".
func stringAt(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func stringAtOr(raw map[string]any, key, fallback string) string {
	if s, ok := stringAt(raw, key); ok {
		return s
	}
	return fallback
}
