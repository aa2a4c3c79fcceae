package core

import (
	"strings"
	"unicode"
)

// FeatureExtractor normalizes a raw email into a classification signal.
// Extraction is pure, total and deterministic: identical input always
// yields an identical signal.
type FeatureExtractor struct {
	taxonomy *Taxonomy
}

// NewFeatureExtractor creates a feature extractor over the given taxonomy
func NewFeatureExtractor(taxonomy *Taxonomy) *FeatureExtractor {
	return &FeatureExtractor{taxonomy: taxonomy}
}

// Extract derives the signal set from an email's subject, body and sender
func (e *FeatureExtractor) Extract(email *Email) Signal {
	text := strings.ToLower(email.Subject + " " + email.Body)
	tokens := tokenize(text)
	tokenSet := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok]++
	}

	sig := Signal{
		TokenCount: len(tokens),
		Matches:    make(map[string][]string),
	}

	categories := []struct {
		name  string
		words []string
	}{
		{CategoryLegal, e.taxonomy.Legal},
		{CategorySales, e.taxonomy.Sales},
		{CategorySupport, e.taxonomy.Support},
		{CategoryPricing, e.taxonomy.Pricing},
	}
	for _, cat := range categories {
		for _, kw := range cat.words {
			if matchKeyword(kw, text, tokenSet) {
				sig.Matches[cat.name] = append(sig.Matches[cat.name], kw)
			}
		}
	}

	sig.HasLegalThreat = len(sig.Matches[CategoryLegal]) > 0
	sig.MentionsBug = len(sig.Matches[CategorySupport]) > 0
	sig.HasPricingTerm = len(sig.Matches[CategoryPricing]) > 0

	if sig.TokenCount > 0 {
		salesHits := 0
		for _, kw := range sig.Matches[CategorySales] {
			salesHits += countKeyword(kw, text, tokenSet)
		}
		sig.SalesDensity = float64(salesHits) / float64(sig.TokenCount)
	}

	sig.SentimentScore = e.sentiment(tokenSet)
	return sig
}

// sentiment computes a coarse lexicon-based score bounded to [-1, 1]
func (e *FeatureExtractor) sentiment(tokenSet map[string]int) float64 {
	positive, negative := 0, 0
	for _, kw := range e.taxonomy.Positive {
		positive += tokenSet[kw]
	}
	for _, kw := range e.taxonomy.Negative {
		negative += tokenSet[kw]
	}
	if positive+negative == 0 {
		return 0
	}
	score := float64(positive-negative) / float64(positive+negative)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// matchKeyword matches multi-word phrases as substrings of the normalized
// text and single words against the token set, so "legal action" matches
// as a phrase while "plan" does not match inside "planet"
func matchKeyword(kw, text string, tokenSet map[string]int) bool {
	return countKeyword(kw, text, tokenSet) > 0
}

// countKeyword counts occurrences the same way matching works: phrases as
// substrings of the normalized text, single words against the token set
func countKeyword(kw, text string, tokenSet map[string]int) int {
	if strings.ContainsRune(kw, ' ') {
		return strings.Count(text, kw)
	}
	return tokenSet[kw]
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
