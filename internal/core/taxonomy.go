package core

import (
	"fmt"
)

// Taxonomy category names used as Signal.Matches keys
const (
	CategoryLegal   = "legal"
	CategorySales   = "sales"
	CategorySupport = "support"
	CategoryPricing = "pricing"
)

// Taxonomy holds the keyword lists and lexicons the feature extractor and
// rule engine work from. It is externally editable data loaded once at
// startup; the engines themselves stay pure.
type Taxonomy struct {
	Legal    []string // legal-threat phrases, matched as substrings
	Sales    []string
	Support  []string
	Pricing  []string
	Positive []string // sentiment lexicon
	Negative []string

	// SalesDensity is the minimum ratio of sales keywords to tokens for
	// the sales_opportunity rule to fire
	SalesDensity float64
}

// Validate checks the taxonomy is usable. A failure here is a
// configuration error, fatal at startup.
func (t *Taxonomy) Validate() error {
	categories := map[string][]string{
		CategoryLegal:   t.Legal,
		CategorySales:   t.Sales,
		CategorySupport: t.Support,
		CategoryPricing: t.Pricing,
	}
	for name, words := range categories {
		if len(words) == 0 {
			return fmt.Errorf("taxonomy category %q has no keywords", name)
		}
	}
	if t.SalesDensity <= 0 || t.SalesDensity >= 1 {
		return fmt.Errorf("sales density threshold %.3f out of range (0, 1)", t.SalesDensity)
	}
	return nil
}

// DefaultTaxonomy returns the built-in keyword taxonomy
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Legal: []string{
			"sue", "lawsuit", "lawyer", "attorney", "legal action",
			"litigation", "court", "legal team", "cease and desist",
		},
		Sales: []string{
			"enterprise", "bulk", "quote", "seats", "deployment",
			"procurement", "evaluation", "budget", "licenses", "rollout",
		},
		Support: []string{
			"bug", "error", "crash", "crashes", "crashing", "broken",
			"failure", "failing", "exception", "not working", "timeout",
		},
		Pricing: []string{
			"pricing", "price", "cost", "plan", "plans", "subscription",
			"monthly", "annual", "discount", "tier",
		},
		Positive: []string{
			"thanks", "thank", "great", "love", "awesome", "happy",
			"excellent", "appreciate", "wonderful", "good",
		},
		Negative: []string{
			"frustrated", "frustrating", "angry", "terrible", "awful",
			"unacceptable", "disappointed", "worst", "horrible", "annoyed",
			"damaged", "furious",
		},
		SalesDensity: 0.05,
	}
}

// TemplateSet maps (Intent, Priority) to a canned response body. The rule
// engine requires it to be exhaustive over every pair the cascade can
// produce.
type TemplateSet map[Intent]map[Priority]string

// Validate checks that a template exists for every intent/priority pair.
// A failure here is a configuration error, fatal at startup.
func (ts TemplateSet) Validate() error {
	for _, intent := range Intents {
		byPriority, ok := ts[intent]
		if !ok {
			return fmt.Errorf("no templates for intent %q", intent)
		}
		for _, priority := range Priorities {
			if text, ok := byPriority[priority]; !ok || text == "" {
				return fmt.Errorf("missing template for %s/%s", intent, priority)
			}
		}
	}
	return nil
}

// Lookup returns the template for the given pair, falling back to the
// general inquiry template if the pair is somehow absent
func (ts TemplateSet) Lookup(intent Intent, priority Priority) string {
	if byPriority, ok := ts[intent]; ok {
		if text, ok := byPriority[priority]; ok && text != "" {
			return text
		}
	}
	return ts[IntentGeneralInquiry][PriorityNormal]
}

// DefaultTemplates returns the built-in response template table
func DefaultTemplates() TemplateSet {
	return TemplateSet{
		IntentComplaint: {
			PriorityUrgent: "I sincerely apologize for the situation you are experiencing. Your case has been escalated to our executive team and you will be contacted within 30 minutes.",
			PriorityHigh:   "I apologize for the trouble you have run into. Your complaint has been escalated and a senior member of our team will reach out within two hours.",
			PriorityNormal: "Thank you for letting us know about this. We take every complaint seriously and will follow up with you within one business day.",
		},
		IntentSalesOpportunity: {
			PriorityUrgent: "Thank you for reaching out about an enterprise deployment. A solutions architect will contact you today to discuss your requirements.",
			PriorityHigh:   "Thank you for considering us for your deployment. I would like to arrange a call with our solutions architect this week to walk through your requirements.",
			PriorityNormal: "Thank you for your interest in our product. Our sales team will be in touch shortly with more details.",
		},
		IntentSupportRequest: {
			PriorityUrgent: "Thank you for reporting this issue. It has been flagged as critical and our technical team is investigating now; you will hear back within the hour.",
			PriorityHigh:   "Thank you for reporting this issue. Our technical team is investigating and will respond within 4 hours.",
			PriorityNormal: "Thank you for reporting this issue. Our support team will look into it and respond within one business day.",
		},
		IntentPricingInquiry: {
			PriorityUrgent: "Thank you for your interest in our pricing. A member of our sales team will call you today with the details you need.",
			PriorityHigh:   "Thank you for your interest in our pricing. Our plans start at $49/month and our sales team will follow up today with a tailored quote.",
			PriorityNormal: "Thank you for your interest! Our plans start at $49/month for Starter and $149/month for Professional, with custom pricing for Enterprise. Would you like to schedule a demo?",
		},
		IntentGeneralInquiry: {
			PriorityUrgent: "Thank you for your message. It has been marked for prompt attention and we will respond as soon as possible.",
			PriorityHigh:   "Thank you for your message. We will get back to you shortly.",
			PriorityNormal: "Thank you for your message. We appreciate you reaching out and will respond within 24-48 hours.",
		},
	}
}
