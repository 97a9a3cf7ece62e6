package rules

import (
	"path"
	"strings"
	"sync"
	"time"

	"visitgate/internal/action"
	"visitgate/internal/config"
	"visitgate/internal/dataType"
	"visitgate/internal/utils"
)

// infraPaths are health and metrics endpoints that are never worth
// recording, regardless of configured rules.
var infraPaths = map[string]struct{}{
	"/health":  {},
	"/healthz": {},
	"/ready":   {},
	"/readyz":  {},
	"/ping":    {},
	"/status":  {},
	"/metrics": {},
	"/up":      {},
}

var staticPrefixes = []string{"/static/", "/assets/", "/_next/", "/favicon"}

type cacheEntry struct {
	set        *RuleSet
	compiledAt time.Time
}

// Engine decides whether a request is admitted for tracking. Compiled
// rule sets are cached per scope with a TTL; everything else about the
// engine is immutable after construction, so Admit is safe to call from
// any number of goroutines.
type Engine struct {
	mu          sync.RWMutex
	cache       map[string]*cacheEntry
	ruleConfig  *config.RuleConfig
	ttl         time.Duration
	excludeMeth map[string]struct{}
	staticExts  map[string]struct{}
	maxPathLen  int
	log         *utils.LogxManager
	now         func() time.Time
}

// NewEngine builds an engine from startup configuration. rc may be nil
// when no rule file exists; every path then falls to default-allow after
// the built-in exclusions.
func NewEngine(cfg *config.MainConfig, rc *config.RuleConfig, lg *utils.LogxManager) *Engine {
	e := &Engine{
		cache:      make(map[string]*cacheEntry),
		ruleConfig: rc,
		ttl:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
		maxPathLen: cfg.MaxPathLength,
		log:        lg,
		now:        time.Now,
	}
	e.excludeMeth = make(map[string]struct{}, len(cfg.ExcludeMethods))
	for _, m := range cfg.ExcludeMethods {
		e.excludeMeth[strings.ToUpper(m)] = struct{}{}
	}
	e.staticExts = make(map[string]struct{}, len(cfg.ExcludeExtensions))
	for _, ext := range cfg.ExcludeExtensions {
		e.staticExts[strings.ToLower(ext)] = struct{}{}
	}
	return e
}

// Admit evaluates the built-in exclusions and then the tenant and
// global rule scopes, in fixed precedence order. It never fails; an
// unmatched request is allowed.
func (e *Engine) Admit(req dataType.RequestContext, tenant string) action.Verdict {
	method := strings.ToUpper(req.Method)
	if _, excluded := e.excludeMeth[method]; excluded {
		return action.Blocked(action.ReasonMethodExcluded)
	}

	if e.maxPathLen > 0 && len(req.Path) > e.maxPathLen {
		return action.Blocked(action.ReasonPathTooLong)
	}

	cleaned := utils.CleanPath(req.Path)

	if e.isStaticAsset(cleaned) {
		return action.Blocked(action.ReasonStaticAsset)
	}

	if _, infra := infraPaths[cleaned]; infra {
		return action.Blocked(action.ReasonInfraPath)
	}

	if tenant != "" {
		ts := e.ruleSet(tenant)
		if matchAny(ts.Exclude, method, cleaned) {
			return action.Blocked(action.ReasonTenantExclude)
		}
		if len(ts.IncludeOnly) > 0 {
			if matchAny(ts.IncludeOnly, method, cleaned) {
				// Tenant allowlist hit outranks global excludes.
				return action.Allowed()
			}
			return action.Blocked(action.ReasonTenantNotIncluded)
		}
	}

	gs := e.ruleSet("")
	if matchAny(gs.Exclude, method, cleaned) {
		return action.Blocked(action.ReasonGlobalExclude)
	}
	if len(gs.IncludeOnly) > 0 && !matchAny(gs.IncludeOnly, method, cleaned) {
		return action.Blocked(action.ReasonGlobalNotIncluded)
	}

	return action.Allowed()
}

func (e *Engine) isStaticAsset(cleaned string) bool {
	if ext := strings.ToLower(path.Ext(cleaned)); ext != "" {
		if _, ok := e.staticExts[ext]; ok {
			return true
		}
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return true
		}
	}
	return false
}

// ruleSet returns the compiled set for a scope, recompiling when the
// cached entry is missing or past its TTL. Readers always observe a
// fully built set; a recompilation race just overwrites the entry with
// an equivalent value.
func (e *Engine) ruleSet(scope string) *RuleSet {
	now := e.now()

	e.mu.RLock()
	entry, ok := e.cache[scope]
	if ok && now.Sub(entry.compiledAt) < e.ttl {
		set := entry.set
		e.mu.RUnlock()
		return set
	}
	rc := e.ruleConfig
	e.mu.RUnlock()

	set := compileScope(rc.Scope(scope))
	for _, r := range set.IncludeOnly {
		if r.degraded {
			e.log.LogWarn("rules", "pattern failed to compile, matching exactly", r.Pattern)
		}
	}
	for _, r := range set.Exclude {
		if r.degraded {
			e.log.LogWarn("rules", "pattern failed to compile, matching exactly", r.Pattern)
		}
	}
	e.log.LogDebug("rules", "compiled rule scope", scopeName(scope))

	e.mu.Lock()
	e.cache[scope] = &cacheEntry{set: set, compiledAt: now}
	e.mu.Unlock()
	return set
}

func scopeName(scope string) string {
	if scope == "" {
		return "global"
	}
	return scope
}

// Invalidate drops the cached rule set for one scope. The empty string
// is the global scope.
func (e *Engine) Invalidate(scope string) {
	e.mu.Lock()
	delete(e.cache, scope)
	e.mu.Unlock()
}

// InvalidateAll drops every cached rule set.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	e.cache = make(map[string]*cacheEntry)
	e.mu.Unlock()
}

// Reconfigure swaps in a new raw rule configuration and clears the
// cache so the next lookup per scope compiles from the new rules.
func (e *Engine) Reconfigure(rc *config.RuleConfig) {
	e.mu.Lock()
	e.ruleConfig = rc
	e.cache = make(map[string]*cacheEntry)
	e.mu.Unlock()
}
