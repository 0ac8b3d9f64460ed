package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		target  string
		want    int
		wantErr bool
	}{
		{name: "absent uses default", target: "/product", want: 0},
		{name: "blank uses default", target: "/product?limit=", want: 0},
		{name: "valid value", target: "/product?limit=25", want: 25},
		{name: "non-numeric", target: "/product?limit=abc", wantErr: true},
		{name: "below min", target: "/product?limit=0", wantErr: true},
		{name: "above max", target: "/product?limit=101", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", tc.target, nil)
			got, err := ParseQueryInt(req, "limit", 0, 1, 100)

			if tc.wantErr {
				require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
