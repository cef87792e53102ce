package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/llm"
	"github.com/appforge/discovery-ai-platform/internal/observability/metrics"
	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/internal/session"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// Session metadata keys owned by the engine.
const (
	metaStyle          = "questioning_style"
	metaPendingDefault = "pending_default_style"
	metaStyleSwitches  = "style_switches"

	// MetaAnsweredCount tracks answered questions within the current
	// stage. The HTTP layer increments it per turn; ProgressStage
	// resets it when a stage advances.
	MetaAnsweredCount = "answered_count"
)

// Engine orchestrates the per-turn analyze/select/generate pipeline and
// the stage state machine. Question wording is delegated to the LLM
// collaborator; the engine owns the parameters.
type Engine struct {
	llm      llm.Client
	sessions *session.Manager
	catalog  *agent.Catalog
	logger   *logging.Logger
	tracer   trace.Tracer
	metrics  *metrics.EngineMetrics

	genTimeout time.Duration
	genRetries int
}

// Option customizes engine construction.
type Option func(*Engine)

// WithGenerationTimeout bounds each LLM call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.genTimeout = d
		}
	}
}

// WithGenerationRetries sets how many times a failed LLM call is retried
// before surfacing ErrGenerationFailed.
func WithGenerationRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.genRetries = n
		}
	}
}

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New constructs the adaptive conversation engine.
func New(client llm.Client, sessions *session.Manager, catalog *agent.Catalog, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		llm:        client,
		sessions:   sessions,
		catalog:    catalog,
		logger:     logger.Component("engine"),
		tracer:     otel.Tracer("discovery.internal.engine"),
		genTimeout: 20 * time.Second,
		genRetries: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzeResponse computes the per-turn metrics and behavioral signals
// for one utterance. It reads session context for logging only and never
// mutates state.
func (e *Engine) AnalyzeResponse(ctx context.Context, userResponse string, sctx *session.Context) (*ResponseAnalysis, error) {
	_, span := e.tracer.Start(ctx, "engine.analyze_response")
	defer span.End()

	if sctx == nil || strings.TrimSpace(userResponse) == "" {
		span.RecordError(ErrInvalidInput)
		return nil, ErrInvalidInput
	}

	analysis := analyzeUtterance(userResponse)

	span.SetAttributes(
		attribute.Float64("analysis.sophistication", analysis.SophisticationScore),
		attribute.Float64("analysis.engagement", analysis.Engagement),
		attribute.Int("analysis.signals", len(analysis.Signals)),
	)
	for _, sig := range analysis.Signals {
		e.metrics.ObserveSignal(string(sig.Kind))
	}
	e.logger.Debug("response analyzed",
		"session_id", sctx.SessionID,
		"sophistication", analysis.SophisticationLevel,
		"engagement", analysis.Engagement,
		"signals", len(analysis.Signals),
	)
	return analysis, nil
}

// AdaptiveQuestion is the engine's per-turn output: the next question and
// the strategy that produced it.
type AdaptiveQuestion struct {
	Question            string                      `json:"question"`
	QuestionType        string                      `json:"question_type"`
	SophisticationLevel profile.SophisticationLevel `json:"sophistication_level"`
	FollowUpSuggestions []string                    `json:"follow_up_suggestions,omitempty"`
	Confidence          float64                     `json:"confidence"`
	Reasoning           string                      `json:"reasoning"`
	QuestioningStyle    QuestioningStyle            `json:"questioning_style"`
}

// GenerateAdaptiveQuestion selects the questioning style for this turn,
// delegates wording to the LLM, and commits the style to the session.
// A generation failure surfaces as ErrGenerationFailed with the session
// untouched, so retries are always safe.
func (e *Engine) GenerateAdaptiveQuestion(ctx context.Context, sess *session.Session, analysis *ResponseAnalysis) (*AdaptiveQuestion, error) {
	ctx, span := e.tracer.Start(ctx, "engine.generate_question")
	defer span.End()

	if sess == nil || analysis == nil {
		span.RecordError(ErrInvalidInput)
		return nil, ErrInvalidInput
	}

	start := time.Now()
	sctx := sess.GetContext()
	defer func() {
		e.metrics.ObserveTurnLatency(string(sctx.CurrentStage), time.Since(start).Seconds())
	}()
	if sctx.Agent == nil && e.catalog != nil {
		// Sessions created without an agent still get questions grounded in
		// the general template. The session itself is left untouched.
		sctx.Agent = e.catalog.Instantiate("general")
	}
	previous := styleFromMeta(sctx.Metadata, metaStyle)
	pendingDefault := styleFromMeta(sctx.Metadata, metaPendingDefault)

	style, reason := selectStyle(previous, analysis, pendingDefault)

	question, err := e.generateQuestion(ctx, sctx, style)
	if err != nil {
		span.RecordError(err)
		e.metrics.ObserveGeneration("error")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	e.metrics.ObserveGeneration("ok")

	// Generation succeeded; now commit the style decision under the
	// per-session lock so turns serialize. A failed save reverts the
	// metadata, keeping the hysteresis state at the last commit.
	newPending := nextPendingDefault(previous, style, analysis)
	meta := map[string]any{
		metaStyle:          string(style),
		metaPendingDefault: string(newPending),
	}
	switched := style != previous && previous != ""
	if switched {
		meta[metaStyleSwitches] = metaCount(sctx.Metadata, metaStyleSwitches) + 1
	}
	err = e.sessions.WithSessionLock(sctx.SessionID, func() error {
		return sess.MutateAndSave(ctx, func() {
			sess.UpdateMetadata(meta)
		})
	})
	if err != nil {
		return nil, err
	}
	if switched {
		e.metrics.ObserveStyleSwitch(string(previous), string(style))
	}

	span.SetAttributes(
		attribute.String("question.style", string(style)),
		attribute.String("question.stage", string(sctx.CurrentStage)),
	)

	return &AdaptiveQuestion{
		Question:            question,
		QuestionType:        questionTypeFor(sctx.CurrentStage),
		SophisticationLevel: analysis.SophisticationLevel,
		FollowUpSuggestions: followUpsFor(sctx, 2),
		Confidence:          styleConfidence(analysis, style),
		Reasoning:           reason,
		QuestioningStyle:    style,
	}, nil
}

// generateQuestion builds the style/domain/stage prompt and calls the
// collaborator with the engine's timeout and retry policy.
func (e *Engine) generateQuestion(ctx context.Context, sctx session.Context, style QuestioningStyle) (string, error) {
	prompt := buildQuestionPrompt(sctx, style)

	var lastErr error
	for attempt := 0; attempt <= e.genRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.genTimeout)
		resp, err := e.llm.Complete(callCtx, llm.Request{
			System:      []string{questionSystemPrompt},
			Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: prompt}},
			MaxTokens:   256,
			Temperature: 0.7,
		})
		cancel()
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return strings.TrimSpace(resp.Text), nil
		}
		if err == nil {
			err = fmt.Errorf("empty completion")
		}
		lastErr = err
		e.logger.Warn("question generation attempt failed",
			"session_id", sctx.SessionID,
			"attempt", attempt,
			"error", err,
		)
	}
	return "", lastErr
}

const questionSystemPrompt = `You are a product discovery assistant. ` +
	`Produce exactly one question for the user, with no preamble and no numbering.`

func buildQuestionPrompt(sctx session.Context, style QuestioningStyle) string {
	params := style.Params()

	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", sctx.CurrentStage)
	if sctx.Agent != nil {
		fmt.Fprintf(&b, "Domain: %s\n", sctx.Agent.Domain)
		if seeds := sctx.Agent.Template.QuestionBank[sctx.CurrentStage]; len(seeds) > 0 {
			fmt.Fprintf(&b, "Ground the question in themes like: %s\n", strings.Join(seeds, " | "))
		}
		for plain, domainTerm := range sctx.Agent.Template.Terminology {
			fmt.Fprintf(&b, "Say %q instead of %q.\n", domainTerm, plain)
		}
	}
	fmt.Fprintf(&b, "Tone: %s\nPacing: %s\nAssumed depth: %s\nExample density: %s\n",
		params.Tone, params.Pacing, params.AssumedDepth, params.ExampleDensity)
	if sctx.Profile != nil {
		fmt.Fprintf(&b, "User industry: %s, role: %s.\n", sctx.Profile.Industry, sctx.Profile.Role)
	}
	b.WriteString("Write the next discovery question.")
	return b.String()
}

func questionTypeFor(stage agent.Stage) string {
	switch stage {
	case agent.StageIdeaClarity:
		return "clarifying"
	case agent.StageUserWorkflow:
		return "exploratory"
	case agent.StageTechnicalSpecs:
		return "specifying"
	case agent.StageWireframes:
		return "visual"
	default:
		return "open"
	}
}

func followUpsFor(sctx session.Context, n int) []string {
	if sctx.Agent == nil {
		return nil
	}
	seeds := sctx.Agent.Template.QuestionBank[sctx.CurrentStage]
	if len(seeds) > n {
		seeds = seeds[:n]
	}
	return append([]string(nil), seeds...)
}

// styleConfidence reports how sure the engine is about the chosen style:
// signal-driven choices inherit the signal confidence, defaults lean on
// how far the sophistication score sits from a bucket boundary.
func styleConfidence(analysis *ResponseAnalysis, style QuestioningStyle) float64 {
	switch style {
	case StyleConfusedSupportive:
		if sig, ok := findSignal(analysis.Signals, SignalConfusion); ok {
			return sig.Confidence
		}
	case StyleImpatientAccelerated:
		if sig, ok := findSignal(analysis.Signals, SignalImpatience); ok {
			return sig.Confidence
		}
	case StyleExpertEfficient:
		if sig, ok := findSignal(analysis.Signals, SignalExpertSkip); ok {
			return sig.Confidence
		}
	}
	return 0.5 + clamp01(analysis.Clarity)*0.3
}

// nextPendingDefault tracks the one-turn memory behind the two-turn
// default-switch rule in selectStyle.
func nextPendingDefault(previous, chosen QuestioningStyle, analysis *ResponseAnalysis) QuestioningStyle {
	preferred := defaultStyleFor(analysis.SophisticationLevel, analysis.Engagement)
	if preferred != chosen && chosen == previous {
		return preferred
	}
	return ""
}

func styleFromMeta(meta map[string]any, key string) QuestioningStyle {
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return QuestioningStyle(s)
		}
	}
	return ""
}

func metaCount(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64: // JSON round-trip turns ints into float64
		return int(v)
	default:
		return 0
	}
}
