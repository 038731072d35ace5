// Package lexicon rewrites operator text into the dialect expected by the
// synthesis voice: Islamic terms and prayer names are respelled so the
// synthesized pronunciation matches local usage.
package lexicon

import "regexp"

// rule is a single case-insensitive substitution. Whole-word rules anchor on
// word boundaries; phrase rules match anywhere (surah names appear glued to
// hyphens and digits in operator text).
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

func word(term, replacement string) rule {
	return rule{
		pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
		replacement: replacement,
	}
}

func phrase(term, replacement string) rule {
	return rule{
		pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term)),
		replacement: replacement,
	}
}

// Normalizer applies the fixed dialect lexicon. Rules run in order against
// the already-rewritten string and the full list is idempotent: applying it
// twice yields the same text as once.
type Normalizer struct {
	rules []rule
}

// NewNormalizer compiles the lexicon.
func NewNormalizer() *Normalizer {
	return &Normalizer{rules: []rule{
		word("Allah", "Alloh"),
		word("Alloh", "Alloh"),
		word("Rasulullah", "Rasululloh"),
		word("SWT", "Subhanahu wa Ta'ala"),
		word("SAW", "Shallallahu alaihi wa sallam"),
		phrase("Al-Maidah", "almaidah"),
		phrase("Al Maidah", "almaidah"),
		phrase("Almaidah", "almaidah"),
		phrase("Al-Fatihah", "alfatihah"),
		phrase("Al-Anfal", "alanfal"),
		phrase("Al-Quran", "alquran"),
		word("Assalamualaikum", "Assalamu alaikum"),
		word("Wassalamualaikum", "Wassalamu alaikum"),
		word("Warahmatullahi", "Warohmatullohi"),
		word("Wabarakatuh", "Wabarokatuh"),
		// Case-canonicalizing rules: the replacement re-spells the same term,
		// fixing lowercase or mixed-case operator input.
		phrase("Sholat", "Sholat"),
		phrase("Salat", "Sholat"),
		phrase("Dzuhur", "Zuhur"),
		phrase("Ashar", "Asar"),
		phrase("Maghrib", "Magrib"),
		phrase("Isya", "Isya"),
		phrase("Subuh", "Subuh"),
	}}
}

// Normalize rewrites text through the full rule list. Total function: any
// input yields a result, empty in gives empty out.
func (n *Normalizer) Normalize(text string) string {
	for _, r := range n.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}
