package locale

import (
	"strings"

	"golang.org/x/text/language"

	localemodel "github.com/avelier/decoychat/internal/model/locale"
)

// DefaultLocale is used when no signal resolves.
const DefaultLocale = "en"

// Definition describes one supported locale and its cultural variants.
type Definition struct {
	DefaultVariant string
	Variants       []string
	PromptHint     string
}

// Signals is the ordered set of optional locale sources for one request.
// Earlier fields win; sources are never merged.
type Signals struct {
	QueryParam        string               // explicit request parameter
	Attached          *localemodel.Context // context set earlier on the connection
	AcceptLanguage    string               // Accept-Language style header
	UserPreference    string               // authenticated user's stored preference
	VariantPreference string               // explicit cultural-variant choice
}

// Resolver maps request signals to a locale context.
type Resolver struct {
	catalog       map[string]Definition
	defaultLocale string
}

// NewResolver builds a resolver over the shipped locale catalog.
func NewResolver(defaultLocale string) *Resolver {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return &Resolver{
		catalog: map[string]Definition{
			"en": {DefaultVariant: "us", Variants: []string{"us", "uk", "au"}, PromptHint: "Casual, contraction-heavy English."},
			"es": {DefaultVariant: "es", Variants: []string{"es", "mx"}, PromptHint: "Warm, informal Spanish; prefer tú."},
			"fr": {DefaultVariant: "fr", Variants: []string{"fr", "ca"}, PromptHint: "Polite French; keep vous until familiarity is established."},
			"de": {DefaultVariant: "de", Variants: []string{"de", "at"}, PromptHint: "Direct German; short sentences."},
			"pt": {DefaultVariant: "br", Variants: []string{"br", "pt"}, PromptHint: "Friendly Brazilian Portuguese by default."},
		},
		defaultLocale: defaultLocale,
	}
}

// Supported reports whether the locale code is in the catalog.
func (r *Resolver) Supported(code string) bool {
	_, ok := r.catalog[strings.ToLower(code)]
	return ok
}

// Resolve picks the locale from the first valid signal, then selects the
// cultural variant within it. Unrecognized tokens are skipped, never errors.
func (r *Resolver) Resolve(sig Signals) localemodel.Context {
	code := r.resolveLocale(sig)
	def := r.catalog[code]

	variant := def.DefaultVariant
	if pref := strings.ToLower(strings.TrimSpace(sig.VariantPreference)); pref != "" {
		for _, v := range def.Variants {
			if v == pref {
				variant = v
				break
			}
		}
	}

	return localemodel.Context{
		Locale:     code,
		Variant:    variant,
		PromptHint: def.PromptHint,
	}
}

func (r *Resolver) resolveLocale(sig Signals) string {
	if code, ok := r.normalize(sig.QueryParam); ok {
		return code
	}
	if sig.Attached != nil && sig.Attached.Locale != "" {
		if code, ok := r.normalize(sig.Attached.Locale); ok {
			return code
		}
	}
	for _, token := range parseAcceptLanguage(sig.AcceptLanguage) {
		if code, ok := r.normalize(token); ok {
			return code
		}
	}
	if code, ok := r.normalize(sig.UserPreference); ok {
		return code
	}
	return r.defaultLocale
}

// normalize lowercases a locale token, reduces it to its primary language
// subtag and checks it against the catalog.
func (r *Resolver) normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	// Prefer the canonical base language from a full BCP 47 parse; fall back
	// to a plain subtag split for tokens x/text rejects.
	code := ""
	if tag, err := language.Parse(raw); err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			code = base.String()
		}
	}
	if code == "" {
		code = strings.ToLower(strings.SplitN(raw, "-", 2)[0])
		code = strings.SplitN(code, "_", 2)[0]
	}

	if _, ok := r.catalog[code]; ok {
		return code, true
	}
	return "", false
}

// parseAcceptLanguage extracts locale tokens in header order, stripping
// quality factors. Preference follows header position, not q-value.
func parseAcceptLanguage(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if token != "" && token != "*" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
