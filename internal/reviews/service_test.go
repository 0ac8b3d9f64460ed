package reviews

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	getFn  func(path string, query url.Values, token string, out any) error
	postFn func(path, token string, body any) error
	calls  []string
}

func (s *stubCaller) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	s.calls = append(s.calls, "GET "+path)
	if s.getFn != nil {
		return s.getFn(path, query, token, out)
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
	return nil
}

func (s *stubCaller) Delete(ctx context.Context, path, token string, out any) error {
	return nil
}

func TestForProductIsPublicRead(t *testing.T) {
	t.Parallel()

	api := &stubCaller{getFn: func(path string, query url.Values, token string, out any) error {
		require.Empty(t, token)
		require.Empty(t, query, "an uncapped read sends no query")
		return json.Unmarshal([]byte(`[{"_id":"r1","user":{"_id":"u1","username":"asha"},"rating":5,"comment":"great","createdAt":"2026-08-01T10:00:00Z"}]`), out)
	}}
	svc := NewService(api, nil)

	list, err := svc.ForProduct(context.Background(), "p1", 0)

	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "asha", list[0].User.Username)
	require.Equal(t, []string{"GET /review/p1"}, api.calls)
}

func TestForProductForwardsLimit(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	api := &stubCaller{getFn: func(path string, query url.Values, token string, out any) error {
		gotQuery = query
		return json.Unmarshal([]byte(`[]`), out)
	}}
	svc := NewService(api, nil)

	_, err := svc.ForProduct(context.Background(), "p1", 3)

	require.NoError(t, err)
	require.Equal(t, "3", gotQuery.Get("limit"))
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	svc := NewService(api, nil)

	err := svc.Submit(context.Background(), "", SubmitInput{ProductID: "p1", Rating: 5, Comment: "great"})
	require.True(t, pkgerrors.IsUnauthorized(err))

	err = svc.Submit(context.Background(), "tok", SubmitInput{ProductID: "p1", Rating: 0, Comment: "great"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = svc.Submit(context.Background(), "tok", SubmitInput{ProductID: "p1", Rating: 3, Comment: "   "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	require.Empty(t, api.calls)
}

func TestSubmitPostsReview(t *testing.T) {
	t.Parallel()

	var sent SubmitInput
	api := &stubCaller{postFn: func(path, token string, body any) error {
		sent = body.(SubmitInput)
		require.Equal(t, "tok", token)
		return nil
	}}
	svc := NewService(api, nil)

	require.NoError(t, svc.Submit(context.Background(), "tok", SubmitInput{ProductID: "p1", Rating: 4, Comment: "solid"}))
	require.Equal(t, "p1", sent.ProductID)
	require.Equal(t, []string{"POST /review"}, api.calls)
}
