// Package vip escalates mail from configured customer domains.
package vip

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a sender's domain belongs to a VIP customer.
// The triage service bumps normal-priority results from VIP senders to
// high; it never downgrades and never touches the urgent guarantee.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a VIP domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized VIP domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{domains: normalized, logger: logger}
}

// IsVIP checks if the sender's domain is in the VIP list
func (c *Checker) IsVIP(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.Trim(parts[1], "> "))

	for _, vipDomain := range c.domains {
		if vipDomain == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is VIP",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}
