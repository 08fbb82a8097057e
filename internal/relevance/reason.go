package relevance

// Reason is the closed taxonomy of admissibility and scoring outcomes.
// "Not relevant" is an expected result, never an error.
type Reason string

const (
	ReasonURLInvalid           Reason = "url_invalid"
	ReasonURLHomepage          Reason = "url_homepage"
	ReasonURLBlockedPattern    Reason = "url_blocked_pattern"
	ReasonURLNotInAllow        Reason = "url_not_in_allow_patterns"
	ReasonPublishedMissing     Reason = "published_missing"
	ReasonNotToday             Reason = "not_today"
	ReasonTimeWindow           Reason = "time_window"
	ReasonSourceMaxAge         Reason = "source_max_age"
	ReasonCandidateGateMiss    Reason = "candidate_gate_miss"
	ReasonPairRuleMismatch     Reason = "pair_rule_mismatch"
	ReasonGeneralNoCoreCompany Reason = "general_no_core_or_company"
	ReasonScoreBelowThreshold  Reason = "score_below_threshold"
	ReasonGeneralSourceCap     Reason = "general_source_cap"
	ReasonFastPass             Reason = "fast_pass"
	ReasonKept                 Reason = "kept"
)

// Stage tells how far an item got through the pipeline.
type Stage string

const (
	StageHardDrop Stage = "hard_drop"
	StageFastPass Stage = "fast_pass"
	StageStage2   Stage = "stage2"
)

var reasonLabelsZH = map[Reason]string{
	ReasonGeneralNoCoreCompany: "通用媒体缺少核心词或公司信号",
	ReasonScoreBelowThreshold:  "相关性评分低于阈值",
	ReasonTimeWindow:           "超出时间窗口",
	ReasonURLInvalid:           "链接无效",
	ReasonURLHomepage:          "首页链接非文章",
	ReasonURLNotInAllow:        "链接不在允许路径",
	ReasonURLBlockedPattern:    "命中屏蔽路径",
	ReasonGeneralSourceCap:     "通用媒体单源条数超限",
	ReasonPairRuleMismatch:     "关键词配对规则不满足",
	ReasonPublishedMissing:     "发布时间缺失",
	ReasonNotToday:             "非当日新闻",
	ReasonSourceMaxAge:         "超出来源时效窗口",
	ReasonCandidateGateMiss:    "未命中候选信号",
	ReasonFastPass:             "直通保留",
	ReasonKept:                 "保留",
}

// LabelZH returns the Chinese display label for a reason, falling back to
// the code itself for anything unknown.
func (r Reason) LabelZH() string {
	if label, ok := reasonLabelsZH[r]; ok {
		return label
	}
	return string(r)
}
