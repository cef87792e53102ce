// Package agent supplies read-only discovery agent templates: the ordered
// stage sequence, terminology map, and question bank for each domain.
package agent

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Stage is a named phase of the guided discovery conversation.
type Stage string

const (
	StageIdeaClarity    Stage = "idea-clarity"
	StageUserWorkflow   Stage = "user-workflow"
	StageTechnicalSpecs Stage = "technical-specs"
	StageWireframes     Stage = "wireframes"
)

// Template describes how an agent runs discovery for one domain.
type Template struct {
	Domain      string            `json:"domain"`
	DisplayName string            `json:"display_name"`
	Stages      []Stage           `json:"stages"`
	Terminology map[string]string `json:"terminology"`
	// QuestionBank holds seed questions per stage; the conversation engine
	// uses them as generation grounding, not verbatim output.
	QuestionBank map[Stage][]string `json:"question_bank"`
	// QuestionsPerStage is the completion evidence target before a stage
	// advance is granted.
	QuestionsPerStage int `json:"questions_per_stage"`
}

// Instance is a template customized for one session.
type Instance struct {
	ID       string   `json:"id"`
	Domain   string   `json:"domain"`
	Template Template `json:"template"`
}

// Catalog is a read-only registry of templates keyed by domain.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewCatalog builds a catalog from the built-in domain templates.
func NewCatalog() *Catalog {
	c := &Catalog{templates: make(map[string]Template)}
	for _, t := range builtinTemplates {
		c.templates[t.Domain] = t
	}
	return c
}

// Get returns the template for a domain, falling back to the general
// template for unknown domains.
func (c *Catalog) Get(domain string) Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.templates[domain]; ok {
		return t
	}
	return c.templates["general"]
}

// Domains lists all registered template domains.
func (c *Catalog) Domains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.templates))
	for d := range c.templates {
		out = append(out, d)
	}
	return out
}

// Instantiate creates a session-scoped instance of the domain's template.
func (c *Catalog) Instantiate(domain string) *Instance {
	t := c.Get(domain)
	return &Instance{
		ID:       fmt.Sprintf("agent_%s", uuid.NewString()),
		Domain:   t.Domain,
		Template: t,
	}
}

var defaultStages = []Stage{StageIdeaClarity, StageUserWorkflow, StageTechnicalSpecs, StageWireframes}

var builtinTemplates = []Template{
	{
		Domain:      "general",
		DisplayName: "General Product Discovery",
		Stages:      defaultStages,
		Terminology: map[string]string{
			"users":   "users",
			"product": "product",
		},
		QuestionBank: map[Stage][]string{
			StageIdeaClarity: {
				"What problem does your product solve, and for whom?",
				"What made you decide to build this now?",
			},
			StageUserWorkflow: {
				"Walk me through what a typical user does from start to finish.",
				"Which step of that journey matters most to get right?",
			},
			StageTechnicalSpecs: {
				"Do you have existing systems this needs to connect with?",
				"How many users do you expect in the first year?",
			},
			StageWireframes: {
				"Which screen should a first-time user land on?",
				"What actions need to be reachable in one tap?",
			},
		},
		QuestionsPerStage: 3,
	},
	{
		Domain:      "fintech",
		DisplayName: "Fintech Discovery",
		Stages:      defaultStages,
		Terminology: map[string]string{
			"users":   "account holders",
			"product": "platform",
			"records": "transactions",
		},
		QuestionBank: map[Stage][]string{
			StageIdeaClarity: {
				"What financial operation is painful today that your platform fixes?",
				"Are you moving money, tracking it, or both?",
			},
			StageUserWorkflow: {
				"Walk me through a single transaction from initiation to settlement.",
				"Who needs to approve or review along the way?",
			},
			StageTechnicalSpecs: {
				"Which compliance regimes apply: KYC, AML, SOC2, PCI?",
				"Do you need real-time ledger consistency or is eventual fine?",
			},
			StageWireframes: {
				"What does the account holder see immediately after a payment?",
				"Which balances and histories belong on the main dashboard?",
			},
		},
		QuestionsPerStage: 3,
	},
	{
		Domain:      "healthcare",
		DisplayName: "Healthcare Discovery",
		Stages:      defaultStages,
		Terminology: map[string]string{
			"users":   "patients",
			"product": "portal",
			"records": "charts",
		},
		QuestionBank: map[Stage][]string{
			StageIdeaClarity: {
				"Is this for patients, providers, or practice staff?",
				"What part of the care journey are you improving?",
			},
			StageUserWorkflow: {
				"Describe a patient's path from booking to follow-up.",
				"Where does staff spend the most manual effort today?",
			},
			StageTechnicalSpecs: {
				"Will this handle protected health information directly?",
				"Do you need to integrate with an existing EHR or EMR?",
			},
			StageWireframes: {
				"What should a patient see first when they log in?",
				"How prominent should appointment booking be?",
			},
		},
		QuestionsPerStage: 3,
	},
	{
		Domain:      "ecommerce",
		DisplayName: "E-commerce Discovery",
		Stages:      defaultStages,
		Terminology: map[string]string{
			"users":   "shoppers",
			"product": "store",
			"records": "orders",
		},
		QuestionBank: map[Stage][]string{
			StageIdeaClarity: {
				"What are you selling, and is it physical, digital, or a service?",
				"Why would a shopper buy from you instead of a marketplace?",
			},
			StageUserWorkflow: {
				"Walk me through a purchase from landing page to delivery.",
				"How do returns and exchanges work?",
			},
			StageTechnicalSpecs: {
				"How is inventory tracked today?",
				"Which payment methods do your shoppers expect?",
			},
			StageWireframes: {
				"What belongs on the product page above the fold?",
				"How many steps should checkout take?",
			},
		},
		QuestionsPerStage: 3,
	},
	{
		Domain:      "saas",
		DisplayName: "SaaS Discovery",
		Stages:      defaultStages,
		Terminology: map[string]string{
			"users":   "subscribers",
			"product": "platform",
			"records": "workspaces",
		},
		QuestionBank: map[Stage][]string{
			StageIdeaClarity: {
				"What job does a subscriber hire your platform to do?",
				"Is this single-player useful or does it need a team to shine?",
			},
			StageUserWorkflow: {
				"What happens in a subscriber's first fifteen minutes?",
				"What does weekly usage look like once they're retained?",
			},
			StageTechnicalSpecs: {
				"Do customers need isolated tenants or is shared fine?",
				"Which third-party tools must this integrate with on day one?",
			},
			StageWireframes: {
				"What's the one metric the dashboard must lead with?",
				"Where does a new workspace get configured?",
			},
		},
		QuestionsPerStage: 3,
	},
}
