package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/llm"
	"github.com/appforge/discovery-ai-platform/internal/session"
)

type stubLLMClient struct {
	responses []llm.Response
	err       error
	calls     int
}

func (s *stubLLMClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.calls++
	if s.err != nil {
		return llm.Response{}, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func newTestEngine(t *testing.T, client llm.Client) (*Engine, *session.Manager) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewRedisStore(rc, 2*time.Second)
	mgr := session.NewManager(store, time.Minute, nil)
	eng := New(client, mgr, agent.NewCatalog(), nil, WithGenerationRetries(0))
	return eng, mgr
}

func newTestSession(t *testing.T, mgr *session.Manager, domain string) *session.Session {
	t.Helper()
	s, err := mgr.CreateSession(context.Background(), "", session.CreateOptions{})
	require.NoError(t, err)
	s.RegisterAgent(agent.NewCatalog().Instantiate(domain))
	require.NoError(t, s.SaveState(context.Background()))
	return s
}

func stubQuestion(text string) *stubLLMClient {
	return &stubLLMClient{responses: []llm.Response{{Text: text}}}
}

func TestAnalyzeResponse_InvalidInput(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	sctx := sess.GetContext()

	_, err := eng.AnalyzeResponse(context.Background(), "   ", &sctx)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.AnalyzeResponse(context.Background(), "hello", nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateAdaptiveQuestion_ScenarioStyles(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  QuestioningStyle
	}{
		{
			name:  "novice",
			input: "I want to build an app but I don't know anything about technology",
			want:  StyleNoviceFriendly,
		},
		{
			name:  "expert skip",
			input: "I've built 5 fintech apps already, can we skip the basics?",
			want:  StyleExpertEfficient,
		},
		{
			name:  "confusion",
			input: "I'm not sure what you mean by that, this is all very confusing",
			want:  StyleConfusedSupportive,
		},
		{
			name:  "advanced technical",
			input: "We need SOC2 compliance with real-time API integration for our microservices architecture",
			want:  StyleAdvancedTechnical,
		},
		{
			name:  "impatience",
			input: "Can you get to the point, I don't have much time today",
			want:  StyleImpatientAccelerated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng, mgr := newTestEngine(t, stubQuestion("Next question?"))
			sess := newTestSession(t, mgr, "general")
			sctx := sess.GetContext()

			analysis, err := eng.AnalyzeResponse(context.Background(), tc.input, &sctx)
			require.NoError(t, err)

			q, err := eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
			require.NoError(t, err)
			require.Equal(t, tc.want, q.QuestioningStyle)
			require.Equal(t, "Next question?", q.Question)

			// The committed style must survive a reload.
			require.NoError(t, sess.LoadState(context.Background()))
			v, ok := sess.MetadataValue(metaStyle)
			require.True(t, ok)
			require.Equal(t, string(tc.want), v)
		})
	}
}

func TestGenerateAdaptiveQuestion_ConfusionBeatsImpatience(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	sctx := sess.GetContext()

	analysis, err := eng.AnalyzeResponse(context.Background(),
		"I'm so confused, I don't understand, and I don't have time for this", &sctx)
	require.NoError(t, err)

	_, hasConfusion := findSignal(analysis.Signals, SignalConfusion)
	_, hasImpatience := findSignal(analysis.Signals, SignalImpatience)
	require.True(t, hasConfusion)
	require.True(t, hasImpatience)

	q, err := eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
	require.NoError(t, err)
	require.Equal(t, StyleConfusedSupportive, q.QuestioningStyle)
}

func TestGenerateAdaptiveQuestion_NoThrashOnWeakTurns(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")

	// Establish a style with a clearly novice turn.
	sctx := sess.GetContext()
	analysis, err := eng.AnalyzeResponse(context.Background(),
		"I don't know anything about technology yet", &sctx)
	require.NoError(t, err)
	q, err := eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
	require.NoError(t, err)
	require.Equal(t, StyleNoviceFriendly, q.QuestioningStyle)

	// A run of weak, ambiguous turns must hold the style every time.
	weakTurns := []string{
		"hmm maybe",
		"i guess that could work",
		"ok",
		"not sure, possibly",
		"yeah maybe",
	}
	for _, turn := range weakTurns {
		sctx = sess.GetContext()
		analysis, err = eng.AnalyzeResponse(context.Background(), turn, &sctx)
		require.NoError(t, err)
		q, err = eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
		require.NoError(t, err)
		require.Equal(t, StyleNoviceFriendly, q.QuestioningStyle, "turn %q flipped style", turn)
	}

	switches, _ := sess.MetadataValue(metaStyleSwitches)
	require.Nil(t, switches, "weak turns must not record style switches")
}

func TestGenerateAdaptiveQuestion_SustainedDefaultSwitches(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")

	turns := []string{
		"I don't know anything about technology yet",
		// Two consecutive clearly high-sophistication turns.
		"Our microservices architecture needs API integration with real-time latency budgets and caching infrastructure",
		"The backend schema and deployment infrastructure already run on kubernetes with CI/CD automation in production",
	}
	var styles []QuestioningStyle
	for _, turn := range turns {
		sctx := sess.GetContext()
		analysis, err := eng.AnalyzeResponse(context.Background(), turn, &sctx)
		require.NoError(t, err)
		q, err := eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
		require.NoError(t, err)
		styles = append(styles, q.QuestioningStyle)
	}

	require.Equal(t, StyleNoviceFriendly, styles[0])
	require.Equal(t, StyleNoviceFriendly, styles[1], "first disagreeing turn must hold")
	require.Equal(t, StyleAdvancedTechnical, styles[2], "second consecutive turn must switch")
}

func TestGenerateAdaptiveQuestion_GenerationFailureLeavesStateUntouched(t *testing.T) {
	failing := &stubLLMClient{err: errors.New("model unavailable")}
	eng, mgr := newTestEngine(t, failing)
	sess := newTestSession(t, mgr, "general")
	sctx := sess.GetContext()

	analysis, err := eng.AnalyzeResponse(context.Background(),
		"I don't know anything about technology", &sctx)
	require.NoError(t, err)

	_, err = eng.GenerateAdaptiveQuestion(context.Background(), sess, analysis)
	require.ErrorIs(t, err, ErrGenerationFailed)

	// No partial style commit: a retry starts from clean state.
	require.NoError(t, sess.LoadState(context.Background()))
	_, ok := sess.MetadataValue(metaStyle)
	require.False(t, ok)
}

func TestGenerateAdaptiveQuestion_InvalidInput(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")

	_, err := eng.GenerateAdaptiveQuestion(context.Background(), sess, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.GenerateAdaptiveQuestion(context.Background(), nil, &ResponseAnalysis{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestProgressStage(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	ctx := context.Background()

	// Insufficient evidence holds the stage.
	res, err := eng.ProgressStage(ctx, sess, ProgressEvidence{AnsweredQuestions: 1, StageConfidence: 0.9})
	require.NoError(t, err)
	require.False(t, res.Advanced)
	require.Equal(t, agent.StageIdeaClarity, res.Stage)

	// Low confidence holds too, even with enough answers.
	res, err = eng.ProgressStage(ctx, sess, ProgressEvidence{AnsweredQuestions: 3, StageConfidence: 0.2})
	require.NoError(t, err)
	require.False(t, res.Advanced)

	// Full evidence advances exactly one stage.
	res, err = eng.ProgressStage(ctx, sess, ProgressEvidence{AnsweredQuestions: 3, StageConfidence: 0.8})
	require.NoError(t, err)
	require.True(t, res.Advanced)
	require.Equal(t, agent.StageUserWorkflow, res.Stage)
}

func TestProgressStage_TerminalIdempotent(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	ctx := context.Background()

	evidence := ProgressEvidence{AnsweredQuestions: 3, StageConfidence: 0.9}
	for i := 0; i < 3; i++ {
		_, err := eng.ProgressStage(ctx, sess, evidence)
		require.NoError(t, err)
	}
	res, err := eng.ProgressStage(ctx, sess, evidence)
	require.NoError(t, err)
	require.True(t, res.Terminal)
	require.False(t, res.Advanced)
	require.Equal(t, agent.StageWireframes, res.Stage)

	// Again: still the same stage, still a no-op.
	res2, err := eng.ProgressStage(ctx, sess, evidence)
	require.NoError(t, err)
	require.Equal(t, res.Stage, res2.Stage)
	require.False(t, res2.Advanced)
}

func TestMonitorStyleEffectiveness(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	sctx := sess.GetContext()

	engaged, err := eng.AnalyzeResponse(context.Background(),
		"We onboard customers through a guided setup, and they manage orders, inventory, and shipping from one dashboard", &sctx)
	require.NoError(t, err)

	report, err := eng.MonitorStyleEffectiveness(&sctx, StyleIntermediateGuided, engaged)
	require.NoError(t, err)
	require.Equal(t, RecommendHold, report.Recommendation)

	distressed, err := eng.AnalyzeResponse(context.Background(),
		"I don't understand, this is all very confusing", &sctx)
	require.NoError(t, err)

	report, err = eng.MonitorStyleEffectiveness(&sctx, StyleAdvancedTechnical, distressed)
	require.NoError(t, err)
	require.Equal(t, RecommendSwitch, report.Recommendation)
	require.Less(t, report.EffectivenessScore, 0.4)
}

func TestQuickCheck_CrossConsistencyWithFullAnalyzer(t *testing.T) {
	eng, _ := newTestEngine(t, stubQuestion("q"))

	clearlyNovice := []string{
		"I want to build an app but I don't know anything about technology",
		"I'm new to this and have no technical background at all",
	}
	clearlyExpert := []string{
		"We need SOC2 compliance with real-time API integration for our microservices architecture",
		"Our kubernetes infrastructure handles backend deployment with CI/CD, caching, and database schema migrations",
	}

	for _, input := range clearlyNovice {
		quick := eng.QuickSophisticationCheck(input, "general")
		full := analyzeUtterance(input)
		require.Equal(t, quick.Level, full.SophisticationLevel, "input %q", input)
	}
	for _, input := range clearlyExpert {
		quick := eng.QuickSophisticationCheck(input, "general")
		full := analyzeUtterance(input)
		require.Equal(t, quick.Level, full.SophisticationLevel, "input %q", input)
	}
}

func TestBuildAssumptionTrigger(t *testing.T) {
	eng, mgr := newTestEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	sctx := sess.GetContext()

	analysis, err := eng.AnalyzeResponse(context.Background(),
		"Stop with the questions, just build it and use your best judgment", &sctx)
	require.NoError(t, err)

	event, ok := eng.BuildAssumptionTrigger(&sctx, analysis, []string{"partial answer"})
	require.True(t, ok)
	require.Equal(t, SignalEscapeHatch, event.Signal)
	require.Equal(t, sctx.SessionID, event.SessionID)
	require.Equal(t, agent.StageIdeaClarity, event.Stage)

	// A plain answer must not trigger.
	analysis, err = eng.AnalyzeResponse(context.Background(),
		"My customers mostly order through the website", &sctx)
	require.NoError(t, err)
	_, ok = eng.BuildAssumptionTrigger(&sctx, analysis, nil)
	require.False(t, ok)
}

// flakyStore fails a configured number of writes, then delegates.
type flakyStore struct {
	session.Store
	failPuts int
}

func (f *flakyStore) Put(ctx context.Context, snap *session.Snapshot, ttl time.Duration) error {
	if f.failPuts > 0 {
		f.failPuts--
		return session.ErrStorageTimeout
	}
	return f.Store.Put(ctx, snap, ttl)
}

func newFlakyEngine(t *testing.T, client llm.Client) (*Engine, *session.Manager, *flakyStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	fs := &flakyStore{Store: session.NewRedisStore(rc, 2*time.Second)}
	mgr := session.NewManager(fs, time.Minute, nil)
	eng := New(client, mgr, agent.NewCatalog(), nil, WithGenerationRetries(0))
	return eng, mgr, fs
}

func TestProgressStage_FailedSaveRevertsAdvance(t *testing.T) {
	eng, mgr, fs := newFlakyEngine(t, stubQuestion("q"))
	sess := newTestSession(t, mgr, "general")
	ctx := context.Background()

	sess.UpdateMetadata(map[string]any{MetaAnsweredCount: 3})
	require.NoError(t, sess.SaveState(ctx))

	evidence := ProgressEvidence{AnsweredQuestions: 3, StageConfidence: 0.9}
	fs.failPuts = 1
	_, err := eng.ProgressStage(ctx, sess, evidence)
	require.ErrorIs(t, err, session.ErrStorageTimeout)

	// The in-memory session still sits on the last committed stage.
	sctx := sess.GetContext()
	require.Equal(t, agent.StageIdeaClarity, sctx.CurrentStage)
	require.Equal(t, 0, sctx.StageIndex)
	require.Equal(t, 3, sctx.Metadata[MetaAnsweredCount])

	// The retry advances exactly one stage.
	res, err := eng.ProgressStage(ctx, sess, evidence)
	require.NoError(t, err)
	require.True(t, res.Advanced)
	require.Equal(t, agent.StageUserWorkflow, res.Stage)

	sctx = sess.GetContext()
	require.Equal(t, 1, sctx.StageIndex)
	require.Equal(t, 0, sctx.Metadata[MetaAnsweredCount])
}

func TestGenerateAdaptiveQuestion_FailedSaveRevertsStyle(t *testing.T) {
	eng, mgr, fs := newFlakyEngine(t, stubQuestion("What stack are you on today?"))
	sess := newTestSession(t, mgr, "general")
	ctx := context.Background()

	sctx := sess.GetContext()
	analysis, err := eng.AnalyzeResponse(ctx,
		"I've built 5 fintech apps already, can we skip the basics?", &sctx)
	require.NoError(t, err)

	fs.failPuts = 1
	_, err = eng.GenerateAdaptiveQuestion(ctx, sess, analysis)
	require.ErrorIs(t, err, session.ErrStorageTimeout)

	_, ok := sess.MetadataValue(metaStyle)
	require.False(t, ok)
	_, ok = sess.MetadataValue(metaPendingDefault)
	require.False(t, ok)

	// The retry commits the same decision cleanly.
	q, err := eng.GenerateAdaptiveQuestion(ctx, sess, analysis)
	require.NoError(t, err)
	require.Equal(t, StyleExpertEfficient, q.QuestioningStyle)

	v, ok := sess.MetadataValue(metaStyle)
	require.True(t, ok)
	require.Equal(t, string(StyleExpertEfficient), v)

	require.NoError(t, sess.LoadState(ctx))
	v, _ = sess.MetadataValue(metaStyle)
	require.Equal(t, string(StyleExpertEfficient), v)
}
