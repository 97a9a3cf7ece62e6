package pipeline

import (
	"time"

	"visitgate/internal/action"
	"visitgate/internal/botdetect"
	"visitgate/internal/config"
	"visitgate/internal/dataType"
	"visitgate/internal/fingerprint"
	"visitgate/internal/geo"
	"visitgate/internal/rules"
	"visitgate/internal/utils"
)

// Result is everything the persistence/session layer needs to decide
// what, if anything, to record for one request.
type Result struct {
	Verdict        action.Verdict
	Classification dataType.ClassificationResult
	Geo            dataType.GeoResult
	Identity       dataType.Identity
	NormalizedPath string
	ProcessedAt    time.Time
}

// CheckFunc is one pipeline stage writing into the shared decision.
type CheckFunc func(dataType.RequestContext, *Result, *action.Decision)

// Pipeline wires the admission, classification, geo, and identity
// stages. Every stage is a pure function over the request; the rule
// engine's compiled-rule cache is the only shared mutable state, so a
// single Pipeline serves all request goroutines.
type Pipeline struct {
	cfg         *config.MainConfig
	rules       *rules.Engine
	classifier  *botdetect.Classifier
	geo         *geo.Resolver
	counter     *dataType.VisitCounter
	precision   dataType.PrecisionLevel
	privacyMode bool
	log         *utils.LogxManager
}

// New assembles a pipeline from startup configuration. rc may be nil
// when no rule file is configured.
func New(cfg *config.MainConfig, rc *config.RuleConfig, lg *utils.LogxManager) *Pipeline {
	freqLimit, window, err := utils.ParseRate(cfg.BotFrequencyLimit)
	if err != nil {
		lg.LogWarn("pipeline", "bad bot_frequency_limit, using 60/1m", cfg.BotFrequencyLimit)
		freqLimit, window = 60, 60
	}
	if window <= 0 {
		window = 60
	}

	return &Pipeline{
		cfg:         cfg,
		rules:       rules.NewEngine(cfg, rc, lg),
		classifier:  botdetect.NewClassifier(freqLimit * 60 / window),
		geo:         geo.NewResolver(cfg, lg),
		counter:     dataType.NewVisitCounter(16, window),
		precision:   dataType.ParsePrecision(cfg.PrecisionLevel),
		privacyMode: cfg.PrivacyMode,
		log:         lg,
	}
}

// Rules exposes the rule engine for cache invalidation on
// reconfiguration.
func (p *Pipeline) Rules() *rules.Engine {
	return p.rules
}

// Counter exposes the frequency counter so hosts can feed it from
// their own request handler instead of supplying RequestFrequency.
func (p *Pipeline) Counter() *dataType.VisitCounter {
	return p.counter
}

// Evaluate runs the checks in order. Admission may short-circuit: a
// blocked request skips classification and enrichment entirely.
// Evaluate never fails; malformed input degrades to empty results.
func (p *Pipeline) Evaluate(req dataType.RequestContext, tenant string) Result {
	result := Result{ProcessedAt: time.Now()}
	decision := action.NewDecision()

	checkFuncs := []CheckFunc{
		p.checkAdmission(tenant),
		p.checkClassification,
		p.checkGeo,
		p.checkIdentity,
	}

	for _, checkFunc := range checkFuncs {
		checkFunc(req, &result, decision)
		if decision.Get().Act == action.Block {
			break
		}
	}

	if !decision.Decided() {
		decision.Set(action.Allowed())
	}
	result.Verdict = decision.Get()
	result.NormalizedPath = utils.CanonicalizeURI(req.Path)
	return result
}

func (p *Pipeline) checkAdmission(tenant string) CheckFunc {
	return func(req dataType.RequestContext, _ *Result, decision *action.Decision) {
		decision.Set(p.rules.Admit(req, tenant))
	}
}

func (p *Pipeline) checkClassification(req dataType.RequestContext, result *Result, _ *action.Decision) {
	if req.RequestFrequency <= 0 && req.RemoteAddr.IsValid() {
		// Host did not supply a frequency; derive it from our counter.
		key := req.RemoteAddr.String()
		p.counter.Add(key, 1)
		req.RequestFrequency = p.counter.PerMinute(key)
	}
	result.Classification = p.classifier.Classify(req)
}

func (p *Pipeline) checkGeo(req dataType.RequestContext, result *Result, _ *action.Decision) {
	result.Geo = p.geo.Resolve(req.Headers, req.RemoteAddr, p.precision, p.privacyMode)
}

func (p *Pipeline) checkIdentity(req dataType.RequestContext, result *Result, _ *action.Decision) {
	result.Identity = fingerprint.Fingerprint(req, p.privacyMode)
}
