package relevance

// ScoreBreakdown names every contribution to an item's score. It rides
// along on the decision record so a kept/dropped verdict is always
// explainable after the fact.
type ScoreBreakdown struct {
	Core        int `json:"core"`
	Title       int `json:"title"`
	Context     int `json:"context"`
	Brand       int `json:"brand"`
	Company     int `json:"company"`
	Semantic    int `json:"semantic"`
	Profile     int `json:"profile"`
	SearchAPI   int `json:"search_api"`
	Negative    int `json:"negative"`
	PairPenalty int `json:"pair_penalty"`
}

// Total sums the contributions and clamps to [0,100].
func (b ScoreBreakdown) Total() int {
	score := b.Core + b.Title + b.Context + b.Brand + b.Company + b.Semantic +
		b.Profile + b.SearchAPI + b.Negative + b.PairPenalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

var profileBonus = map[Profile]int{
	ProfileGeneralMedia:  0,
	ProfileIndustryMedia: 6,
	ProfileNewsroom:      10,
	ProfileRegulator:     10,
	ProfileResearch:      8,
}

// Pair-rule issue tags recorded on the decision.
const (
	pairIssueLevelWithoutContext = "level_without_context"
	pairIssueTruckWithoutContext = "truck_without_context"
)

// ScoreStage2 computes the weighted score and the keep/drop verdict for an
// item that passed the hard gate, was not fast-passed, and has at least one
// candidate signal. Every bonus and penalty is independently capped.
func ScoreStage2(rule SourceRule, settings Settings, signals SignalVector) (bool, int, Reason, ScoreBreakdown, []string) {
	var breakdown ScoreBreakdown

	if n := len(signals.CoreHits); n > 0 {
		breakdown.Core = 20 + capInt(n*8, 25)
	}
	if n := len(signals.CoreTitleHits); n > 0 {
		breakdown.Title = 10 + capInt(n*6, 15)
	}
	if n := len(signals.ContextHits); n > 0 {
		breakdown.Context = capInt(n*3, 12)
	}
	if n := len(signals.BrandHits); n > 0 {
		breakdown.Brand = capInt(n*4, 16)
	}
	if n := len(signals.CompanyHits); n > 0 {
		breakdown.Company = 8 + capInt(n*5, 18)
	}
	if n := len(signals.SemanticHits); n > 0 {
		breakdown.Semantic = capInt(n*4, 12)
	}

	breakdown.Profile = profileBonus[rule.Profile]
	if rule.SourceType == thresholdKeySearchAPI {
		breakdown.SearchAPI = 4
	}

	if n := len(signals.NegativeHits); n > 0 {
		breakdown.Negative = -capInt(n*12, 36)
	}

	var pairIssues []string
	if settings.PairRequireLevelContext && len(signals.LevelHits) > 0 && len(signals.ContextTermHits) == 0 {
		pairIssues = append(pairIssues, pairIssueLevelWithoutContext)
		breakdown.PairPenalty -= 14
	}
	if settings.PairRequireTruckContext && len(signals.TruckHits) > 0 && len(signals.ContextTermHits) == 0 {
		pairIssues = append(pairIssues, pairIssueTruckWithoutContext)
		breakdown.PairPenalty -= 18
	}

	score := breakdown.Total()

	// Pair penalties are not overridable by score when no independent
	// corroborating signal exists.
	if len(pairIssues) > 0 && len(signals.CoreHits) == 0 && len(signals.CompanyHits) == 0 && len(signals.ContextTermHits) == 0 {
		return false, score, ReasonPairRuleMismatch, breakdown, pairIssues
	}

	if rule.Profile == ProfileGeneralMedia && settings.RequireCompanySignalForGeneralMedia {
		if len(signals.CoreHits) == 0 && len(signals.CompanyHits) == 0 {
			return false, score, ReasonGeneralNoCoreCompany, breakdown, pairIssues
		}
	}

	thresholdKey := string(rule.Profile)
	if rule.SourceType == thresholdKeySearchAPI {
		thresholdKey = thresholdKeySearchAPI
	}
	threshold, ok := settings.Thresholds[thresholdKey]
	if !ok {
		threshold = 65
	}

	if score < threshold {
		return false, score, ReasonScoreBelowThreshold, breakdown, pairIssues
	}
	return true, score, ReasonKept, breakdown, pairIssues
}

func capInt(value, limit int) int {
	if value > limit {
		return limit
	}
	return value
}
