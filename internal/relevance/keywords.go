package relevance

// Fixed term lists. These are deliberately compiled in rather than
// configured: they encode what "autonomous driving context" means for the
// pair rules and the semantic candidate gate, and changing them changes the
// meaning of the reason codes downstream consumers rely on.

// semanticSignalTerms mark a document as plausibly on-topic even when no
// configured core keyword matches.
var semanticSignalTerms = []string{
	"robtaxi",
	"robotaxi",
	"driverless taxi",
	"self-driving taxi",
	"autonomous taxi",
	"autonomous vehicle",
	"autonomous truck",
	"driverless truck",
	"driverless car",
	"self-driving car",
	"autonomous car",
	"无人驾驶",
	"自动驾驶",
	"无人驾驶货车",
	"自动驾驶货车",
	"智能网联汽车",
	"无人驾驶汽车",
	"网约车",
	"车队",
	"示范运营",
	"许可",
	"监管",
	"l3",
	"l4",
	"level 3",
	"level 4",
	"icv",
}

// autonomousContextTerms corroborate the generic "level"/"truck" terms in
// the pair rules.
var autonomousContextTerms = []string{
	"无人驾驶",
	"自动驾驶",
	"robotaxi",
	"robtaxi",
	"autonomous",
	"self-driving",
	"driverless",
	"智能网联汽车",
	"无人驾驶汽车",
	"icv",
	"intelligent connected vehicle",
	"av",
	"apollo go",
}

// Bare capability levels and freight terms are too generic on their own;
// without a context term they trigger a pair-rule penalty.
var (
	levelTerms = []string{"l3", "l4", "level 3", "level 4"}
	truckTerms = []string{"无人驾驶货车", "自动驾驶货车", "无人货运", "autonomous truck", "driverless truck", "freight", "truck"}
)

var fastPassTitleKeywordsZHDefault = []string{
	"robotaxi",
	"无人驾驶出租车",
	"自动驾驶出租车",
	"l4",
	"l3",
	"智能网联汽车",
	"无人驾驶汽车",
}

var fastPassTitleKeywordsENDefault = []string{
	"robotaxi",
	"driverless taxi",
	"autonomous taxi",
	"self-driving taxi",
	"level 4",
	"level 3",
	"intelligent connected vehicle",
	"icv",
	"driverless car",
	"autonomous car",
	"self-driving car",
}
