package service

import (
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// Authorizer evaluates policies against verified claims. Every call is
// evaluated from scratch; nothing is cached between requests.
type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Authorize returns nil when claims satisfy policy, domain.ErrInvalidToken
// when there are no claims at all and domain.ErrForbidden otherwise.
func (a *Authorizer) Authorize(claims *domain.Claims, policy domain.Policy) error {
	if claims == nil {
		return domain.ErrInvalidToken
	}
	if !policy.Allows(claims.Role) {
		return domain.ErrForbidden
	}
	return nil
}

var _ ports.Authorizer = (*Authorizer)(nil)
