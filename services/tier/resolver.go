package tier

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orla-io/patron-feed/services/patreon"
)

type IdentityProvider interface {
	GetIdentity(ctx context.Context, accessToken string) (*patreon.Identity, error)
}

// Resolver maps an access token to a membership tier via the Patreon
// identity endpoint.
type Resolver struct {
	api IdentityProvider
}

func NewResolver(api IdentityProvider) *Resolver {
	return &Resolver{
		api: api,
	}
}

// Resolve fetches the caller's identity and returns the tier of the first
// membership entry matching campaignID. Entries after the match are not
// inspected. Returns ErrNoMatch when no entry matches and
// *UnknownTitleError when the matched entry's title is not mapped.
func (s *Resolver) Resolve(ctx context.Context, accessToken string, campaignID string) (Tier, error) {
	idn, err := s.api.GetIdentity(ctx, accessToken)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get identity")
	}
	for _, inc := range idn.Included {
		m := inc.Membership
		if m == nil {
			continue
		}
		if m.Relationships.Campaign.Data.ID != campaignID {
			continue
		}
		return ParseTitle(m.Attributes.Title)
	}
	return 0, ErrNoMatch
}
