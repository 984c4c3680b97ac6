package registry

// =============================================================================
// BUILT-IN EVALUATOR CATALOG
// =============================================================================
// The core panel (always-predicate entries) runs on every submission.
// Specialist entries activate on keyword matches against submission content.
// Spawn-only entries (never-predicate) enter a run only when a specialist
// requests them for deeper, narrower analysis.

// BuiltinDefinitions is the default evaluator catalog in declaration order.
var BuiltinDefinitions = []EvaluatorDefinition{
	// --- Core panel: runs on every submission ---
	{
		ID:            "generalist",
		Domain:        "General Investment",
		ExpertiseTags: []string{"strategy", "fundraising", "pattern-matching"},
		Predicate:     AlwaysPredicate{},
		CostWeight:    1.0,
		Framing: "You are a generalist venture investor with two decades of " +
			"seed and Series A experience. Judge the overall quality and " +
			"fundability of the pitch as a whole.",
	},
	{
		ID:            "market_analyst",
		Domain:        "Market & Competition",
		ExpertiseTags: []string{"tam", "competition", "timing", "gtm"},
		Predicate:     AlwaysPredicate{},
		CostWeight:    1.0,
		Framing: "You are a market analyst. Judge market size, competitive " +
			"landscape, timing, and go-to-market realism. Be skeptical of " +
			"top-down TAM arithmetic.",
	},
	{
		ID:            "financial_analyst",
		Domain:        "Financials & Valuation",
		ExpertiseTags: []string{"unit-economics", "valuation", "runway"},
		Predicate:     AlwaysPredicate{},
		CostWeight:    1.0,
		Framing: "You are a financial analyst. Judge the funding ask against " +
			"revenue, valuation, and stage. Flag anything that implies an " +
			"unsustainable burn or an unjustified valuation.",
	},
	{
		ID:            "team_assessor",
		Domain:        "Team & Execution",
		ExpertiseTags: []string{"founders", "hiring", "execution-risk"},
		Predicate:     AlwaysPredicate{},
		CostWeight:    1.0,
		Framing: "You are an operating partner assessing the team. Judge " +
			"whether the team size and composition can plausibly execute " +
			"the described plan at the described stage.",
	},
	{
		ID:            "product_strategist",
		Domain:        "Product & Differentiation",
		ExpertiseTags: []string{"product", "moat", "retention"},
		Predicate:     AlwaysPredicate{},
		CostWeight:    1.0,
		Framing: "You are a product strategist. Judge the product's " +
			"differentiation, defensibility, and the credibility of the " +
			"described business model.",
	},

	// --- Conditional specialists ---
	{
		ID:     "ai_specialist",
		Domain: "AI / Machine Learning",
		ExpertiseTags: []string{"ml-systems", "data-moat", "model-economics"},
		Predicate: KeywordPredicate{Keywords: []string{
			"ai ", " ai", "a.i.", "artificial intelligence", "machine learning",
			"neural", "deep learning", "llm", "genai", "computer vision", "nlp",
		}},
		CanSpawn:       true,
		SpawnAllowList: []string{"data_advantage_auditor", "infra_cost_auditor"},
		CostWeight:     1.5,
		Framing: "You are an AI/ML specialist. Judge whether the claimed AI " +
			"capability is real, defensible, and economical at scale, or a " +
			"thin wrapper over commodity models. If the data advantage or " +
			"inference economics need deeper scrutiny, request the matching " +
			"sub-specialists.",
	},
	{
		ID:     "fintech_specialist",
		Domain: "Fintech & Payments",
		ExpertiseTags: []string{"payments", "lending", "compliance"},
		Predicate: KeywordPredicate{Keywords: []string{
			"fintech", "payment", "banking", "lending", "insurtech",
			"crypto", "defi", "wallet", "remittance",
		}},
		CanSpawn:       true,
		SpawnAllowList: []string{"regulatory_auditor", "security_auditor"},
		CostWeight:     1.5,
		Framing: "You are a fintech specialist. Judge licensing posture, " +
			"counterparty risk, and unit economics of money movement. " +
			"Request the regulatory or security auditor when the pitch " +
			"touches regulated flows or custody.",
	},
	{
		ID:     "health_specialist",
		Domain: "Healthcare & Biotech",
		ExpertiseTags: []string{"clinical", "reimbursement", "fda"},
		Predicate: KeywordPredicate{Keywords: []string{
			"health", "biotech", "medical", "clinical", "pharma",
			"telehealth", "diagnostic", "patient",
		}},
		CanSpawn:       true,
		SpawnAllowList: []string{"regulatory_auditor"},
		CostWeight:     1.5,
		Framing: "You are a healthcare specialist. Judge clinical validity, " +
			"reimbursement path, and sales cycle realism. Request the " +
			"regulatory auditor when approval risk dominates.",
	},
	{
		ID:     "marketplace_specialist",
		Domain: "Marketplaces & Platforms",
		ExpertiseTags: []string{"liquidity", "network-effects", "take-rate"},
		Predicate: KeywordPredicate{Keywords: []string{
			"marketplace", "two-sided", "gig", "network effect",
			"supply and demand", "take rate",
		}},
		CanSpawn:       true,
		SpawnAllowList: []string{"unit_economics_auditor"},
		CostWeight:     1.5,
		Framing: "You are a marketplace specialist. Judge liquidity strategy, " +
			"chicken-and-egg plan, and take-rate sustainability. Request the " +
			"unit economics auditor when the margins look hand-wavy.",
	},

	// --- Spawn-only sub-specialists (never selected directly) ---
	{
		ID:            "data_advantage_auditor",
		Domain:        "Data Advantage",
		ExpertiseTags: []string{"data-moat", "flywheel"},
		Predicate:     NeverPredicate{},
		CostWeight:    2.0,
		Framing: "You are auditing one narrow question: does this company " +
			"have a proprietary, compounding data advantage, or could a " +
			"competitor replicate its dataset? Judge only that.",
	},
	{
		ID:            "infra_cost_auditor",
		Domain:        "Inference & Infrastructure Cost",
		ExpertiseTags: []string{"cogs", "gpu-economics"},
		Predicate:     NeverPredicate{},
		CostWeight:    2.0,
		Framing: "You are auditing one narrow question: do the serving and " +
			"training costs leave room for a viable gross margin at the " +
			"stated pricing? Judge only that.",
	},
	{
		ID:            "regulatory_auditor",
		Domain:        "Regulatory Exposure",
		ExpertiseTags: []string{"licensing", "approval-risk"},
		Predicate:     NeverPredicate{},
		CostWeight:    2.0,
		Framing: "You are auditing one narrow question: what regulatory " +
			"approvals or licenses stand between this company and revenue, " +
			"and how fatal is the timeline? Judge only that.",
	},
	{
		ID:            "security_auditor",
		Domain:        "Security & Custody",
		ExpertiseTags: []string{"custody", "fraud", "breach-risk"},
		Predicate:     NeverPredicate{},
		CostWeight:    2.0,
		Framing: "You are auditing one narrow question: does the security " +
			"and custody posture survive contact with motivated attackers " +
			"and auditors? Judge only that.",
	},
	{
		ID:            "unit_economics_auditor",
		Domain:        "Unit Economics",
		ExpertiseTags: []string{"cac", "ltv", "contribution-margin"},
		Predicate:     NeverPredicate{},
		CostWeight:    2.0,
		Framing: "You are auditing one narrow question: do the per-unit " +
			"economics (CAC, LTV, contribution margin) work at the stated " +
			"scale? Judge only that.",
	},
}

// NewBuiltin returns a registry containing only the built-in catalog.
func NewBuiltin() (*Registry, error) {
	return New(BuiltinDefinitions)
}
