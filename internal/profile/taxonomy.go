package profile

// industryLexicon is a weighted cue vocabulary for one industry. Strong
// cues are near-unambiguous terms, weak cues only count in aggregate.
type industryLexicon struct {
	industry Industry
	strong   []string
	weak     []string
}

// industryTaxonomy is evaluated in declaration order; the order is the
// final tie-breaker when scores and keyword counts are equal.
var industryTaxonomy = []industryLexicon{
	{
		industry: IndustryFintech,
		strong: []string{
			"fintech", "payment processing", "kyc", "aml", "soc2", "pci",
			"lending", "trading platform", "banking", "neobank", "ledger",
		},
		weak: []string{
			"payments", "transactions", "compliance", "invoice", "wallet",
			"interest rate", "credit", "fraud", "settlement", "finance",
		},
	},
	{
		industry: IndustryHealthcare,
		strong: []string{
			"hipaa", "ehr", "emr", "telehealth", "patient portal",
			"clinical", "medspa", "pharmacy",
		},
		weak: []string{
			"patients", "doctors", "appointments", "medical", "health",
			"clinic", "treatment", "insurance claims", "wellness",
		},
	},
	{
		industry: IndustryEcommerce,
		strong: []string{
			"ecommerce", "e-commerce", "shopify", "storefront", "dropshipping",
			"shopping cart", "sku",
		},
		weak: []string{
			"products", "checkout", "inventory", "orders", "catalog",
			"customers", "shipping", "marketplace", "retail",
		},
	},
	{
		industry: IndustrySaaS,
		strong: []string{
			"saas", "multi-tenant", "subscription billing", "b2b software",
			"api integration", "microservices",
		},
		weak: []string{
			"subscription", "dashboard", "onboarding", "integrations",
			"platform", "tenants", "churn", "mrr", "self-serve",
		},
	},
	{
		industry: IndustryEducation,
		strong: []string{
			"lms", "edtech", "curriculum", "e-learning", "classroom",
		},
		weak: []string{
			"students", "teachers", "courses", "lessons", "grading",
			"school", "learning", "quiz", "enrollment",
		},
	},
	{
		industry: IndustryRealEstate,
		strong: []string{
			"real estate", "mls", "property management", "realtor",
			"tenant screening",
		},
		weak: []string{
			"listings", "properties", "landlord", "lease", "mortgage",
			"agents", "closing", "rental",
		},
	},
	{
		industry: IndustryLogistics,
		strong: []string{
			"logistics", "supply chain", "fleet management", "last mile",
			"freight", "warehouse management",
		},
		weak: []string{
			"shipments", "tracking", "routes", "delivery", "drivers",
			"dispatch", "carriers", "warehouse",
		},
	},
	{
		industry: IndustryHospitality,
		strong: []string{
			"hospitality", "hotel booking", "restaurant reservation",
			"pos system", "front desk",
		},
		weak: []string{
			"guests", "reservations", "bookings", "menu", "rooms",
			"check-in", "restaurant", "hotel",
		},
	},
}

// technicalIndicators are cues that the user frames problems in
// implementation terms.
var technicalIndicators = []string{
	"api", "apis", "database", "backend", "frontend", "deploy", "deployment",
	"architecture", "microservices", "kubernetes", "docker", "ci/cd",
	"latency", "scalability", "webhook", "webhooks", "oauth", "sdk",
	"infrastructure", "endpoint", "endpoints", "schema", "rest", "graphql",
	"caching", "queue", "async", "framework", "repo", "code", "coding",
	"real-time", "integration", "integrations", "stack", "server",
}

// businessIndicators are cues that the user frames problems in
// market/operations terms.
var businessIndicators = []string{
	"revenue", "customers", "market", "roi", "conversion", "retention",
	"pricing", "sales", "marketing", "growth", "stakeholders", "budget",
	"compliance", "operations", "kpi", "kpis", "churn", "acquisition",
	"monetization", "business model", "profit", "margins", "competitors",
	"go-to-market", "branding", "users", "audience", "funnel",
}

// professionalTerms appear in work-context speech regardless of role and
// feed the professional-terminology sophistication factor.
var professionalTerms = []string{
	"requirements", "roadmap", "milestone", "workflow", "process",
	"deliverable", "scope", "timeline", "spec", "mvp", "iteration",
	"prototype", "validation", "metrics", "optimization", "strategy",
}
