// Package visitgate is the request-intake decision core of a
// server-side visit tracker. For every inbound request it decides
// whether to record it at all, whether it came from an automated
// agent, where it roughly came from, and a stable cookie-free visitor
// identity. Everything runs in-memory in microseconds and never fails
// the caller; durable storage and the web framework hooks that invoke
// this core live in the host.
package visitgate

import (
	"net/http"
	"time"

	"visitgate/internal/action"
	"visitgate/internal/config"
	"visitgate/internal/dataType"
	"visitgate/internal/pipeline"
	"visitgate/internal/privacy"
	"visitgate/internal/utils"
)

// Re-exported pipeline types. Hosts build a RequestContext, call
// Evaluate, and hand the Result to their session/persistence layer.
type (
	Pipeline             = pipeline.Pipeline
	Result               = pipeline.Result
	RequestContext       = dataType.RequestContext
	Headers              = dataType.Headers
	ClassificationResult = dataType.ClassificationResult
	GeoResult            = dataType.GeoResult
	Identity             = dataType.Identity
	Verdict              = action.Verdict
	Config               = config.MainConfig
	RuleConfig           = config.RuleConfig
	VisitCounter         = dataType.VisitCounter
	PIICategory          = privacy.Category
)

// PII categories DetectPII can report.
const (
	PIIEmail       = privacy.CategoryEmail
	PIIPhone       = privacy.CategoryPhone
	PIINationalID  = privacy.CategoryNationalID
	PIIPaymentCard = privacy.CategoryPaymentCard
	PIIIPAddress   = privacy.CategoryIPAddress
)

// NewHeaders builds a case-insensitive header map from single-value
// pairs.
func NewHeaders(pairs map[string]string) Headers {
	return dataType.NewHeaders(pairs)
}

// RequestFromHTTP builds a RequestContext from a net/http request for
// hosts that do not construct one themselves.
func RequestFromHTTP(cfg *Config, r *http.Request) RequestContext {
	return pipeline.RequestFromHTTP(cfg, r)
}

// HashAddress produces a salted, irreversible short hash of an address
// for hosts that store visitor addresses. When salt is empty a random
// one is generated and returned alongside the hash.
func HashAddress(addr, salt string) (hash string, usedSalt string) {
	return privacy.HashAddress(addr, salt)
}

// DetectPII reports which PII categories appear in free text, such as a
// URL or referrer a host is about to record.
func DetectPII(text string) []PIICategory {
	return privacy.DetectPII(text)
}

// Sanitize masks detected PII in free text with mask runs of equal
// length. With preserveDomain set, only the local part of an email is
// masked.
func Sanitize(text string, mask rune, preserveDomain bool) string {
	return privacy.Sanitize(text, mask, preserveDomain)
}

// StartVisitCounterGC runs periodic cleanup on a pipeline's counter
// until stopCh closes. Hosts that run the pipeline for long periods
// should start this once against Pipeline.Counter().
func StartVisitCounterGC(counter *VisitCounter, interval time.Duration, stopCh <-chan struct{}) {
	dataType.StartVisitCounterGC(counter, interval, stopCh)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// Load reads configuration and rules from basePath and assembles a
// pipeline. Only startup-time configuration errors are returned; once
// the pipeline exists, no per-request call fails.
func Load(basePath string) (*Pipeline, error) {
	cfg, err := config.LoadMainConfig(basePath)
	if err != nil {
		return nil, err
	}
	rc, err := config.LoadRuleConfig(cfg.RulePath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, rc)
}

// NewWithConfig assembles a pipeline from in-memory configuration,
// validating it first. rc may be nil for a rule-free pipeline.
func NewWithConfig(cfg *Config, rc *RuleConfig) (*Pipeline, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	lg := utils.NewNopManager()
	if cfg.LogPath != "" {
		lg = utils.NewManager(cfg.LogPath)
	}
	return pipeline.New(cfg, rc, lg), nil
}
