package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssumptionSet_AddRejectsUnknownDependency(t *testing.T) {
	set := NewAssumptionSet("s1")

	_, err := set.Add(Assumption{ID: "a", Statement: "email/password auth", DependsOn: []string{"missing"}})
	require.ErrorIs(t, err, ErrUnknownAssumption)
}

func TestAssumptionSet_AddRejectsCycles(t *testing.T) {
	set := NewAssumptionSet("s1")

	_, err := set.Add(Assumption{ID: "a", Statement: "users sign in with email"})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "b", Statement: "password reset via email", DependsOn: []string{"a"}})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "c", Statement: "email provider is transactional", DependsOn: []string{"b"}})
	require.NoError(t, err)

	// Self-cycle.
	_, err = set.Add(Assumption{ID: "d", DependsOn: []string{"d"}})
	require.ErrorIs(t, err, ErrUnknownAssumption)

	// Duplicate id.
	_, err = set.Add(Assumption{ID: "a", Statement: "duplicate"})
	require.Error(t, err)
}

func TestAssumptionSet_AcceptRequiresAcceptedDependencies(t *testing.T) {
	set := NewAssumptionSet("s1")

	_, err := set.Add(Assumption{ID: "auth", Statement: "email/password auth"})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "reset", Statement: "password reset flow", DependsOn: []string{"auth"}})
	require.NoError(t, err)

	err = set.Accept("reset")
	require.Error(t, err, "dependent must not be accepted before its dependency")

	require.NoError(t, set.Accept("auth"))
	require.NoError(t, set.Accept("reset"))

	a, ok := set.Get("reset")
	require.True(t, ok)
	require.Equal(t, AssumptionAccepted, a.UserAccepted)
}

func TestAssumptionSet_RejectCascadesToTransitiveDependents(t *testing.T) {
	set := NewAssumptionSet("s1")

	// auth <- reset <- notify, plus an unrelated branch.
	_, err := set.Add(Assumption{ID: "auth", Statement: "email/password auth"})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "reset", Statement: "password reset flow", DependsOn: []string{"auth"}})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "notify", Statement: "reset confirmation email", DependsOn: []string{"reset"}})
	require.NoError(t, err)
	_, err = set.Add(Assumption{ID: "billing", Statement: "monthly subscription billing"})
	require.NoError(t, err)

	require.NoError(t, set.Accept("auth"))
	require.NoError(t, set.Accept("reset"))
	require.NoError(t, set.Accept("notify"))
	require.NoError(t, set.Accept("billing"))

	require.NoError(t, set.Reject("auth"))

	auth, _ := set.Get("auth")
	require.Equal(t, AssumptionRejected, auth.UserAccepted)
	reset, _ := set.Get("reset")
	require.Equal(t, AssumptionPending, reset.UserAccepted, "direct dependent returns to pending")
	notify, _ := set.Get("notify")
	require.Equal(t, AssumptionPending, notify.UserAccepted, "transitive dependent returns to pending")
	billing, _ := set.Get("billing")
	require.Equal(t, AssumptionAccepted, billing.UserAccepted, "unrelated assumption unaffected")
}

func TestAssumptionSet_AddDefaults(t *testing.T) {
	set := NewAssumptionSet("s1")

	a, err := set.Add(Assumption{Statement: "dark mode ships later"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, AssumptionPending, a.UserAccepted)
	require.Len(t, set.All(), 1)
}
