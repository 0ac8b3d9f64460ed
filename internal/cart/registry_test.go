package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryReturnsSameStorePerSession(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)

	a := reg.ForSession("sid-1", "tok-a")
	b := reg.ForSession("sid-1", "tok-a")
	c := reg.ForSession("sid-2", "")

	require.Same(t, a, b)
	require.NotSame(t, a, c)
	require.Equal(t, 2, reg.Len())
}

func TestRegistryRefreshesTokenEachRequest(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)

	store := reg.ForSession("sid-1", "")
	require.Empty(t, store.Token())

	// Same browser session logs in; the next request carries a token.
	store = reg.ForSession("sid-1", "tok-new")
	require.Equal(t, "tok-new", store.Token())
}

func TestRegistryDropDiscardsState(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)
	store := reg.ForSession("sid-1", "tok")
	store.replace([]Item{lineItem("a", "p1", "500g", 1, 10)})

	reg.Drop("sid-1")

	fresh := reg.ForSession("sid-1", "tok")
	require.NotSame(t, store, fresh)
	require.Empty(t, fresh.Items())
}

func TestRegistrySweepDropsIdleSessions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)
	base := time.Now()

	reg.now = func() time.Time { return base }
	stale := reg.ForSession("sid-idle", "tok")

	reg.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh := reg.ForSession("sid-active", "")

	require.Equal(t, 1, reg.Sweep(time.Hour))
	require.Equal(t, 1, reg.Len())
	require.Same(t, fresh, reg.ForSession("sid-active", ""))
	require.NotSame(t, stale, reg.ForSession("sid-idle", "tok"), "a swept session starts over")
}

func TestRegistrySweepKeepsRecentlyTouchedSessions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)
	base := time.Now()

	reg.now = func() time.Time { return base }
	store := reg.ForSession("sid-1", "tok")

	// A request arrives just before the sweep; the idle clock resets.
	reg.now = func() time.Time { return base.Add(50 * time.Minute) }
	reg.ForSession("sid-1", "tok")

	reg.now = func() time.Time { return base.Add(70 * time.Minute) }
	require.Zero(t, reg.Sweep(time.Hour))
	require.Same(t, store, reg.ForSession("sid-1", "tok"))
}
