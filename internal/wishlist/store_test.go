package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	getFn    func(path string, token string, out any) error
	postFn   func(path string, token string, body any) error
	deleteFn func(path string, token string) error

	calls []string
}

func (s *stubCaller) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	s.calls = append(s.calls, "GET "+path)
	if s.getFn != nil {
		return s.getFn(path, token, out)
	}
	return nil
}

func (s *stubCaller) Post(ctx context.Context, path, token string, body, out any) error {
	s.calls = append(s.calls, "POST "+path)
	if s.postFn != nil {
		return s.postFn(path, token, body)
	}
	return nil
}

func (s *stubCaller) Put(ctx context.Context, path, token string, body, out any) error {
	s.calls = append(s.calls, "PUT "+path)
	return nil
}

func (s *stubCaller) Delete(ctx context.Context, path, token string, out any) error {
	s.calls = append(s.calls, "DELETE "+path)
	if s.deleteFn != nil {
		return s.deleteFn(path, token)
	}
	return nil
}

func serveWishlist(raw string) func(path, token string, out any) error {
	return func(path, token string, out any) error {
		payload, ok := out.(*wishlistPayload)
		if !ok {
			return errors.New("unexpected out type")
		}
		return json.Unmarshal([]byte(raw), payload)
	}
}

func TestFetchNormalizesPopulatedProductsToIDs(t *testing.T) {
	t.Parallel()

	// The backend sometimes populates entries into full product documents.
	api := &stubCaller{getFn: serveWishlist(
		`{"products":["p1",{"_id":"p2","name":"Raw Honey"},"p3"]}`,
	)}
	store := NewStore(api, nil)
	store.SetToken("tok")

	ids := store.Fetch(context.Background())

	require.Equal(t, []string{"p1", "p2", "p3"}, ids)
	require.True(t, store.Contains("p2"))
}

func TestFetchWithoutTokenIssuesNoNetworkCall(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)

	ids := store.Fetch(context.Background())

	require.Empty(t, ids)
	require.Empty(t, api.calls)
}

func TestFetchFailureKeepsCurrentState(t *testing.T) {
	t.Parallel()

	api := &stubCaller{getFn: serveWishlist(`{"products":["p1"]}`)}
	store := NewStore(api, nil)
	store.SetToken("tok")
	store.Fetch(context.Background())

	api.getFn = func(path, token string, out any) error {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	}
	ids := store.Fetch(context.Background())

	require.Equal(t, []string{"p1"}, ids, "a failed refresh must not wipe the wishlist")
}

func TestAddWithoutTokenReturnsLoginRequired(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)

	err := store.Add(context.Background(), "p1")

	require.ErrorIs(t, err, ErrLoginRequired)
	require.Empty(t, api.calls, "unauthenticated add must not touch the backend")
	require.False(t, store.Contains("p1"))
}

func TestAddAppliesLocallyOnlyAfterBackendSuccess(t *testing.T) {
	t.Parallel()

	var sent addPayload
	api := &stubCaller{postFn: func(path, token string, body any) error {
		sent = body.(addPayload)
		return nil
	}}
	store := NewStore(api, nil)
	store.SetToken("tok")

	require.False(t, store.Contains("p1"))
	require.NoError(t, store.Add(context.Background(), "p1"))

	require.Equal(t, "p1", sent.ProductID)
	require.True(t, store.Contains("p1"), "membership must hold immediately after a successful add")
	require.Equal(t, []string{"POST /wishlist/add"}, api.calls)
}

func TestAddFailureLeavesMembershipUnchanged(t *testing.T) {
	t.Parallel()

	api := &stubCaller{postFn: func(path, token string, body any) error {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	}}
	store := NewStore(api, nil)
	store.SetToken("tok")

	err := store.Add(context.Background(), "p1")

	require.Error(t, err)
	require.False(t, store.Contains("p1"))
}

func TestAddIsIdempotentLocally(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)
	store.SetToken("tok")

	require.NoError(t, store.Add(context.Background(), "p1"))
	require.NoError(t, store.Add(context.Background(), "p1"))

	require.Equal(t, []string{"p1"}, store.ProductIDs())
}

func TestRemoveDropsMembershipAfterBackendSuccess(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)
	store.SetToken("tok")
	require.NoError(t, store.Add(context.Background(), "p1"))
	require.NoError(t, store.Add(context.Background(), "p2"))
	api.calls = nil

	require.NoError(t, store.Remove(context.Background(), "p1"))

	require.False(t, store.Contains("p1"), "membership must drop immediately after a successful remove")
	require.True(t, store.Contains("p2"))
	require.Equal(t, []string{"DELETE /wishlist/p1"}, api.calls)
}

func TestRemoveFailureKeepsMembership(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)
	store.SetToken("tok")
	require.NoError(t, store.Add(context.Background(), "p1"))

	api.deleteFn = func(path, token string) error {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	}
	err := store.Remove(context.Background(), "p1")

	require.Error(t, err)
	require.True(t, store.Contains("p1"), "a failed remove must not drop the entry")
}

func TestRemoveWithoutTokenIsNoop(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	store := NewStore(api, nil)

	require.NoError(t, store.Remove(context.Background(), "p1"))
	require.Empty(t, api.calls)
}

func TestRegistrySharesStorePerSession(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)

	a := reg.ForSession("sid-1", "tok")
	b := reg.ForSession("sid-1", "tok")
	c := reg.ForSession("sid-2", "tok")

	require.Same(t, a, b)
	require.NotSame(t, a, c)

	reg.Drop("sid-1")
	require.NotSame(t, a, reg.ForSession("sid-1", "tok"))
}

func TestRegistrySweepDropsIdleSessions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&stubCaller{}, nil)
	base := time.Now()

	reg.now = func() time.Time { return base }
	stale := reg.ForSession("sid-idle", "tok")

	reg.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh := reg.ForSession("sid-active", "tok")

	require.Equal(t, 1, reg.Sweep(time.Hour))
	require.Equal(t, 1, reg.Len())
	require.Same(t, fresh, reg.ForSession("sid-active", "tok"))
	require.NotSame(t, stale, reg.ForSession("sid-idle", "tok"))
}
