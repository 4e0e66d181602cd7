package model

// Limit bounds a metered capability. Unlimited plans use the sentinel
// rather than a large integer so nothing can silently overflow.
type Limit int

const Unlimited Limit = -1

func (l Limit) IsUnlimited() bool { return l < 0 }

// AllowsNext reports whether one more unit may be consumed when `used`
// units have been consumed already.
func (l Limit) AllowsNext(used int) bool {
	if l.IsUnlimited() {
		return true
	}
	return used < int(l)
}

type PlanPeriod string

const (
	PeriodMonthly  PlanPeriod = "monthly"
	PeriodLifetime PlanPeriod = "lifetime"
)

// Plan is a static catalog entry. Plans are immutable at runtime; all
// entitlement decisions read from this table, never from the database.
type Plan struct {
	ID                      string
	Name                    string
	PriceCents              int64
	Currency                string
	OneTime                 bool // single payment, not a recurring subscription
	Period                  PlanPeriod
	MaxDocuments            Limit
	MaxEditsPerDocument     Limit
	MaxGenerationsPerPeriod Limit
	MaxRendersPerPeriod     Limit
	ArtifactRendering       bool
}

func (p Plan) IsZero() bool { return p.ID == "" }
func (p Plan) Free() bool   { return p.PriceCents == 0 }

// Plan identifiers. "none" is the fallback for users without any
// subscription row and grants nothing.
const (
	PlanNone     = "none"
	PlanStarter  = "starter"
	PlanSingle   = "single"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

var catalog = map[string]Plan{
	PlanNone: {
		ID:   PlanNone,
		Name: "No Access",
	},
	PlanStarter: {
		ID:                      PlanStarter,
		Name:                    "Starter",
		PriceCents:              0,
		Currency:                "EUR",
		Period:                  PeriodMonthly,
		MaxDocuments:            1,
		MaxEditsPerDocument:     5,
		MaxGenerationsPerPeriod: 3,
		MaxRendersPerPeriod:     0,
		ArtifactRendering:       false,
	},
	PlanSingle: {
		ID:                      PlanSingle,
		Name:                    "1 Document",
		PriceCents:              100,
		Currency:                "EUR",
		OneTime:                 true,
		Period:                  PeriodLifetime,
		MaxDocuments:            1,
		MaxEditsPerDocument:     Unlimited,
		MaxGenerationsPerPeriod: 1,
		MaxRendersPerPeriod:     5,
		ArtifactRendering:       true,
	},
	PlanPro: {
		ID:                      PlanPro,
		Name:                    "Pro",
		PriceCents:              4900,
		Currency:                "EUR",
		Period:                  PeriodMonthly,
		MaxDocuments:            20,
		MaxEditsPerDocument:     Unlimited,
		MaxGenerationsPerPeriod: Unlimited,
		MaxRendersPerPeriod:     Unlimited,
		ArtifactRendering:       true,
	},
	PlanBusiness: {
		ID:                      PlanBusiness,
		Name:                    "Business",
		PriceCents:              19900,
		Currency:                "EUR",
		Period:                  PeriodMonthly,
		MaxDocuments:            Unlimited,
		MaxEditsPerDocument:     Unlimited,
		MaxGenerationsPerPeriod: Unlimited,
		MaxRendersPerPeriod:     Unlimited,
		ArtifactRendering:       true,
	},
}

// ResolvePlan maps a plan id to its catalog entry. Unknown or empty ids
// resolve to the "none" plan so entitlement checks degrade closed, not open.
func ResolvePlan(id string) Plan {
	if p, ok := catalog[id]; ok {
		return p
	}
	return catalog[PlanNone]
}

// KnownPlan reports whether id names a purchasable or activatable plan.
func KnownPlan(id string) bool {
	_, ok := catalog[id]
	return ok && id != PlanNone
}

// Plans returns the catalog entries users may select.
func Plans() []Plan {
	out := make([]Plan, 0, len(catalog)-1)
	for id, p := range catalog {
		if id == PlanNone {
			continue
		}
		out = append(out, p)
	}
	return out
}
