package rules

import (
	"regexp"
	"strings"

	"visitgate/internal/config"
)

// Kind is the match strategy of a compiled rule.
type Kind int

const (
	KindExact Kind = iota
	KindPrefix
	KindSuffix
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindPrefix:
		return "prefix"
	case KindSuffix:
		return "suffix"
	case KindRegex:
		return "regex"
	default:
		return "exact"
	}
}

// CompiledRule is one immutable admission rule. An empty method set
// means the rule applies to any method.
type CompiledRule struct {
	Kind    Kind
	Pattern string
	regex   *regexp.Regexp
	methods map[string]struct{}
	// degraded marks a pattern whose regex failed to compile and now
	// matches exactly, so the engine can surface it.
	degraded bool
}

// Compile turns a raw rule into its compiled form. A leading "*" makes
// a suffix rule, a trailing "*" a prefix rule, explicit anchors compile
// the pattern as a real regex, and remaining glob metacharacters build
// an anchored regex by escaping the whole pattern first and substituting
// the wildcard tokens afterwards, so "." and "(" in patterns stay
// literal. Compile never fails: a broken regex degrades to an exact
// match on the raw string.
func Compile(raw config.RawRule) CompiledRule {
	rule := CompiledRule{Pattern: raw.Pattern}
	if len(raw.Methods) > 0 {
		rule.methods = make(map[string]struct{}, len(raw.Methods))
		for _, m := range raw.Methods {
			rule.methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
		}
	}

	p := raw.Pattern
	switch {
	case strings.HasPrefix(p, "^") || strings.HasSuffix(p, "$"):
		compiled, err := regexp.Compile(p)
		if err != nil {
			rule.Kind = KindExact
			rule.degraded = true
			return rule
		}
		rule.Kind = KindRegex
		rule.regex = compiled
	case strings.HasPrefix(p, "*") && !strings.ContainsAny(p[1:], "*?"):
		rule.Kind = KindSuffix
		rule.Pattern = p[1:]
	case strings.HasSuffix(p, "*") && !strings.ContainsAny(p[:len(p)-1], "*?"):
		rule.Kind = KindPrefix
		rule.Pattern = p[:len(p)-1]
	case strings.ContainsAny(p, "*?+.()[]{}|\\^$"):
		expr := "^" + globToRegex(p) + "$"
		compiled, err := regexp.Compile(expr)
		if err != nil {
			rule.Kind = KindExact
			rule.degraded = true
			return rule
		}
		rule.Kind = KindRegex
		rule.regex = compiled
	default:
		rule.Kind = KindExact
	}
	return rule
}

// globToRegex escapes every metacharacter in p, then rewrites the
// escaped glob tokens into their regex equivalents.
func globToRegex(p string) string {
	quoted := regexp.QuoteMeta(p)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return quoted
}

// Match reports whether the rule applies to a method/path pair.
func (r CompiledRule) Match(method, path string) bool {
	if len(r.methods) > 0 {
		if _, ok := r.methods[strings.ToUpper(method)]; !ok {
			return false
		}
	}
	switch r.Kind {
	case KindPrefix:
		return strings.HasPrefix(path, r.Pattern)
	case KindSuffix:
		return strings.HasSuffix(path, r.Pattern)
	case KindRegex:
		return r.regex.MatchString(path)
	default:
		return path == r.Pattern
	}
}

// RuleSet is the compiled form of one scope. A non-empty IncludeOnly
// acts as an allowlist for the scope.
type RuleSet struct {
	IncludeOnly []CompiledRule
	Exclude     []CompiledRule
}

func compileScope(scope config.RawScope) *RuleSet {
	rs := &RuleSet{
		IncludeOnly: make([]CompiledRule, 0, len(scope.IncludeOnly)),
		Exclude:     make([]CompiledRule, 0, len(scope.Exclude)),
	}
	for _, raw := range scope.IncludeOnly {
		if raw.Pattern == "" {
			continue
		}
		rs.IncludeOnly = append(rs.IncludeOnly, Compile(raw))
	}
	for _, raw := range scope.Exclude {
		if raw.Pattern == "" {
			continue
		}
		rs.Exclude = append(rs.Exclude, Compile(raw))
	}
	return rs
}

func matchAny(rules []CompiledRule, method, path string) bool {
	for _, r := range rules {
		if r.Match(method, path) {
			return true
		}
	}
	return false
}
