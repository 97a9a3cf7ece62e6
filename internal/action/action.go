package action

type Action int

const (
	Undecided Action = iota // 0: no check has decided yet
	Allow                   // 1: record the request
	Block                   // 2: do not record the request
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Block:
		return "block"
	default:
		return "undecided"
	}
}

// Block reasons are stable strings so the host can aggregate on them.
const (
	ReasonMethodExcluded    = "method_excluded"
	ReasonPathTooLong       = "path_too_long"
	ReasonStaticAsset       = "static_asset"
	ReasonInfraPath         = "infra_path"
	ReasonTenantExclude     = "tenant_exclude"
	ReasonTenantNotIncluded = "tenant_not_included"
	ReasonGlobalExclude     = "global_exclude"
	ReasonGlobalNotIncluded = "global_not_included"
)

// Verdict is an admission outcome. Reason is empty unless Act is Block.
type Verdict struct {
	Act    Action
	Reason string
}

// Allowed returns an Allow verdict.
func Allowed() Verdict {
	return Verdict{Act: Allow}
}

// Blocked returns a Block verdict with the given reason.
func Blocked(reason string) Verdict {
	return Verdict{Act: Block, Reason: reason}
}

// Decision saves the running outcome while pipeline checks execute.
type Decision struct {
	verdict Verdict
}

func NewDecision() *Decision {
	return &Decision{verdict: Verdict{Act: Undecided}}
}

func (d *Decision) Get() Verdict {
	return d.verdict
}

func (d *Decision) Set(v Verdict) {
	d.verdict = v
}

// Decided reports whether any check has produced a final outcome.
func (d *Decision) Decided() bool {
	return d.verdict.Act != Undecided
}
