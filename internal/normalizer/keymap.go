package normalizer

import "fmt"

// The upstream generator emits loosely structured payloads whose keys look
// like serialized HTML tags and attributes. Every external key the service
// understands is declared here, so the contract boundary stays auditable in
// one place. Do not scatter these literals.

const (
	keyTitulo    = "titulo"
	keyResumo    = "resumo"
	keyConclusao = "conclusao"
	keyPostType  = "post_type"
	keyStatus    = "status"
	keyModo      = "modo"

	keyImagemDestaque    = "imagem_destaque"
	keyImagemDestaqueAlt = "imagem_destaque_alt"

	// SEO keys as the generator serializes them.
	keyMetaDescription = `meta name="description"`
	keyMetaKeywords    = `meta name="keywords"`
	keyOgTitle         = `meta property="og:title"`
	keyOgDescription   = `meta property="og:description"`
	keyOgURL           = `meta property="og:url"`
	keyTwitterTitle    = `meta name="twitter:title"`
	keyTwitterDesc     = `meta name="twitter:description"`

	// Recipe group titles.
	keyIngredientesTitulo = "titulo_ingredientes"
	keyModoPreparoTitulo  = "titulo_modo_de_preparo"

	// News citation.
	keyFonte = "fonte"

	// Call-to-action block.
	keyCtaTitulo = "cta_titulo"
	keyCtaTexto  = "cta_texto"
)

// Numbered keys. Each index is probed independently; the generator may skip
// any index without implying anything about the next one.

func keyIngrediente(i int) string { return fmt.Sprintf("ingrediente_%d", i) }

func keyModoPreparo(i int) string { return fmt.Sprintf("modo_de_preparo_%d", i) }

func keySubtitulo(i int) string { return fmt.Sprintf("subtitulo_%d", i) }

func keyParagrafo(i int) string { return fmt.Sprintf("paragrafo_%d", i) }

// Legacy fixed-section keys predate the post_type discriminator and keep
// their original tag-flavored names.

func keyLegacySubtitulo(i int) string { return fmt.Sprintf("h2_secao_%d", i) }

func keyLegacyTexto(i int) string { return fmt.Sprintf("p_secao_%d", i) }

func keyLegacyImagem(i int) string { return fmt.Sprintf("img_secao_%d", i) }

func keyLegacyImagemAlt(i int) string { return fmt.Sprintf("img_secao_%d_alt", i) }

// legacySectionHasImage reports whether a legacy section may carry an image.
// Only sections 3 and 6 do in the legacy shape.
func legacySectionHasImage(i int) bool { return i == 3 || i == 6 }
