// Package orders reads a signed-in customer's orders with the token stored in
// their session.
package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/logger"
	"github.com/iflis7/iyuc-store/services/storefront/internal/commerce"
	"github.com/iflis7/iyuc-store/services/storefront/internal/domain"
)

// DefaultLimit is the page size of the order history.
const DefaultLimit = 10

// TokenStore holds the customer auth token of one session.
type TokenStore interface {
	AuthToken(ctx context.Context) string
	ClearAuthToken(ctx context.Context) error
}

// Service reads orders from the commerce backend.
type Service struct {
	client commerce.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewService(client commerce.Client, log *slog.Logger) *Service {
	return &Service{client: client, logger: log, now: time.Now}
}

// List returns the customer's orders, newest first. A missing, expired or
// rejected token yields an empty list; a rejected or expired token is also
// cleared from the session.
func (s *Service) List(ctx context.Context, tokens TokenStore, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	token, ok := s.token(ctx, tokens)
	if !ok {
		return []domain.Order{}, nil
	}

	list, err := s.client.ListOrders(ctx, token, limit, offset)
	if err != nil {
		if s.signedOut(ctx, tokens, err) {
			return []domain.Order{}, nil
		}
		return nil, err
	}
	if list == nil {
		list = []domain.Order{}
	}
	return list, nil
}

// Retrieve returns one order. It returns nil without error when the session
// has no usable token.
func (s *Service) Retrieve(ctx context.Context, tokens TokenStore, orderID string) (*domain.Order, error) {
	token, ok := s.token(ctx, tokens)
	if !ok {
		return nil, nil
	}

	order, err := s.client.RetrieveOrder(ctx, token, orderID)
	if err != nil {
		if s.signedOut(ctx, tokens, err) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// token returns the stored token unless it is absent or a JWT whose exp has
// passed. Tokens that do not parse as JWTs are passed through to the backend.
func (s *Service) token(ctx context.Context, tokens TokenStore) (string, bool) {
	token := tokens.AuthToken(ctx)
	if token == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return token, true
	}
	if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
		logger.WithContext(ctx, s.logger).Info("customer token expired, clearing")
		s.clear(ctx, tokens)
		return "", false
	}
	return token, true
}

func (s *Service) signedOut(ctx context.Context, tokens TokenStore, err error) bool {
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		return false
	}
	logger.WithContext(ctx, s.logger).Info("customer token rejected, clearing")
	s.clear(ctx, tokens)
	return true
}

func (s *Service) clear(ctx context.Context, tokens TokenStore) {
	if err := tokens.ClearAuthToken(ctx); err != nil {
		logger.WithContext(ctx, s.logger).Warn("failed to clear customer token", slog.String("error", err.Error()))
	}
}
