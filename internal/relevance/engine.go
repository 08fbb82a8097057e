package relevance

import (
	"fmt"

	"github.com/rs/zerolog"

	"tarmac.news/avdigest/internal/canonical"
	sourceschema "tarmac.news/avdigest/schema"
)

// Record is an item plus its relevance decision, the shape written to the
// kept and dropped partitions. Never mutated once appended.
type Record struct {
	canonical.Item

	RelevanceStage    string `json:"relevance_stage"`
	RelevanceScore    int    `json:"relevance_score"`
	RelevanceProfile  string `json:"relevance_profile"`
	RelevanceReason   string `json:"relevance_reason"`
	RelevanceReasonZH string `json:"relevance_reason_zh"`

	MatchedCoreKeywords          []string `json:"matched_core_keywords"`
	MatchedContextKeywords       []string `json:"matched_context_keywords"`
	MatchedBrandKeywords         []string `json:"matched_brand_keywords"`
	MatchedCompanyAliases        []string `json:"matched_company_aliases"`
	MatchedFastPassTitleKeywords []string `json:"matched_fast_pass_title_keywords"`

	ScoreBreakdown ScoreBreakdown `json:"relevance_score_breakdown"`
	PairIssues     []string       `json:"pair_issues,omitempty"`

	DropReason   string `json:"drop_reason"`
	DropReasonZH string `json:"drop_reason_zh"`
}

// Stats is the aggregate outcome of one classification run.
type Stats struct {
	TotalIn  int
	Kept     int
	Dropped  int
	PassRate float64

	DropReasons   map[string]int
	DropReasonsZH map[string]int
	KeptBySource  map[string]int

	FastPassKept     int
	FastPassRejected int
	Stage2Scored     int
	Stage2Kept       int
}

// Result partitions one run's input into kept and dropped records.
type Result struct {
	Kept    []Record
	Dropped []Record
	Stats   Stats
}

// Engine is the relevance classification pipeline: hard gate, signal
// collection, fast path or weighted scoring, then the per-source cap.
// Stateless across runs; all mutable state is local to one Run call.
type Engine struct {
	settings Settings
	rules    map[string]SourceRule
	logger   zerolog.Logger
}

// NewEngine resolves settings and per-source rules from a validated config.
func NewEngine(cfg *sourceschema.SourcesConfig, logger zerolog.Logger) (*Engine, error) {
	settings, err := ResolveSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve relevance settings: %w", err)
	}
	return &Engine{
		settings: settings,
		rules:    ResolveSourceRules(cfg),
		logger:   logger,
	}, nil
}

// Settings exposes the resolved run settings (read-only by convention).
func (e *Engine) Settings() Settings {
	return e.settings
}

// Run classifies items in the given order. Callers pass a time-descending
// sequence so the per-source cap keeps the most recent qualifying items.
// runDate is the target calendar date (YYYY-MM-DD) for strict same-day mode.
func (e *Engine) Run(items []canonical.Item, runDate string) Result {
	result := Result{
		Kept:    make([]Record, 0, len(items)),
		Dropped: make([]Record, 0, len(items)),
		Stats: Stats{
			TotalIn:       len(items),
			DropReasons:   make(map[string]int),
			DropReasonsZH: make(map[string]int),
			KeptBySource:  make(map[string]int),
		},
	}
	generalMediaKept := make(map[string]int)

	for _, item := range items {
		rule, ok := e.rules[item.SourceID]
		if !ok {
			rule = DefaultSourceRule()
		}

		decision := e.evaluate(item, rule, runDate, generalMediaKept)
		record := buildRecord(item, rule, decision)

		if decision.kept {
			result.Kept = append(result.Kept, record)
			result.Stats.KeptBySource[item.SourceID]++
		} else {
			result.Dropped = append(result.Dropped, record)
			result.Stats.DropReasons[string(decision.reason)]++
			result.Stats.DropReasonsZH[decision.reason.LabelZH()]++
		}

		switch {
		case decision.fastPassKept:
			result.Stats.FastPassKept++
		case decision.fastPassRejected:
			result.Stats.FastPassRejected++
		}
		if decision.stage2Scored {
			result.Stats.Stage2Scored++
			if decision.kept {
				result.Stats.Stage2Kept++
			}
		}
	}

	result.Stats.Kept = len(result.Kept)
	result.Stats.Dropped = len(result.Dropped)
	if result.Stats.TotalIn > 0 {
		result.Stats.PassRate = float64(result.Stats.Kept) / float64(result.Stats.TotalIn) * 100
	}

	e.logger.Info().
		Str("run_date", runDate).
		Int("total_in", result.Stats.TotalIn).
		Int("kept", result.Stats.Kept).
		Int("dropped", result.Stats.Dropped).
		Float64("pass_rate", result.Stats.PassRate).
		Str("mode", string(e.settings.Mode)).
		Bool("strict_today", e.settings.StrictTodayMode).
		Int("fast_pass_kept", result.Stats.FastPassKept).
		Msg("relevance run complete")

	return result
}

type decision struct {
	stage      Stage
	kept       bool
	score      int
	reason     Reason
	signals    SignalVector
	breakdown  ScoreBreakdown
	pairIssues []string

	fastPassKept     bool
	fastPassRejected bool
	stage2Scored     bool
}

func (e *Engine) evaluate(item canonical.Item, rule SourceRule, runDate string, generalMediaKept map[string]int) decision {
	d := decision{stage: StageHardDrop}

	hardOK, hardReason := CheckHardConstraints(item, rule, e.settings, runDate)
	if !hardOK {
		d.reason = hardReason
		return d
	}

	d.stage = StageStage2
	d.signals = CollectSignals(item, rule, e.settings)

	if e.settings.FastPassEnabled && len(d.signals.FastPassTitleHits) > 0 {
		if IsFastPass(item, d.signals, e.settings) {
			d.kept = true
			d.score = 100
			d.reason = ReasonFastPass
			d.stage = StageFastPass
			d.fastPassKept = true
		} else {
			d.fastPassRejected = true
		}
	}

	if !d.kept {
		if !d.signals.HasCandidateSignal() {
			d.reason = ReasonCandidateGateMiss
		} else {
			d.stage2Scored = true
			d.kept, d.score, d.reason, d.breakdown, d.pairIssues = ScoreStage2(rule, e.settings, d.signals)
		}
	}

	if d.kept && e.settings.EnableGeneralMediaSourceCap && rule.Profile == ProfileGeneralMedia {
		if generalMediaKept[item.SourceID] >= e.settings.MaxGeneralMediaItemsPerSource {
			d.kept = false
			d.reason = ReasonGeneralSourceCap
		} else {
			generalMediaKept[item.SourceID]++
		}
	}

	return d
}

func buildRecord(item canonical.Item, rule SourceRule, d decision) Record {
	record := Record{
		Item: item,

		RelevanceStage:    string(d.stage),
		RelevanceScore:    d.score,
		RelevanceProfile:  string(rule.Profile),
		RelevanceReason:   string(d.reason),
		RelevanceReasonZH: d.reason.LabelZH(),

		MatchedCoreKeywords:          emptyIfNil(d.signals.CoreHits),
		MatchedContextKeywords:       emptyIfNil(d.signals.ContextHits),
		MatchedBrandKeywords:         emptyIfNil(d.signals.BrandHits),
		MatchedCompanyAliases:        emptyIfNil(d.signals.CompanyHits),
		MatchedFastPassTitleKeywords: emptyIfNil(d.signals.FastPassTitleHits),

		ScoreBreakdown: d.breakdown,
		PairIssues:     d.pairIssues,
	}
	if !d.kept {
		record.DropReason = string(d.reason)
		record.DropReasonZH = d.reason.LabelZH()
	}
	return record
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
