package reviews

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// Reviewer is the populated author of a review.
type Reviewer struct {
	ID        string `json:"_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Review is one customer review of a product.
type Review struct {
	ID        string   `json:"_id"`
	User      Reviewer `json:"user"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	CreatedAt string   `json:"createdAt"`
}

// SubmitInput is a new review submission.
type SubmitInput struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"required"`
}

// Service reads and submits product reviews.
type Service struct {
	api  upstream.Caller
	logg *logger.Logger
}

// NewService wires the review flow.
func NewService(api upstream.Caller, logg *logger.Logger) *Service {
	return &Service{api: api, logg: logg}
}

// ForProduct lists a product's reviews, newest first per the backend's
// ordering. A limit of 0 fetches them all. Reads are public.
func (s *Service) ForProduct(ctx context.Context, productID string, limit int) ([]Review, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	var list []Review
	if err := s.api.Get(ctx, "/review/"+productID, query, "", &list); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "reviews.fetch_failed", err)
		}
		return nil, err
	}
	return list, nil
}

// Submit posts a new review for the logged-in user. Rating and comment are
// checked synchronously so field errors render inline.
func (s *Service) Submit(ctx context.Context, token string, in SubmitInput) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to review")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a rating between 1 and 5")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "write a comment")
	}
	if err := s.api.Post(ctx, "/review", token, in, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "reviews.submit_failed", err)
		}
		return err
	}
	return nil
}
