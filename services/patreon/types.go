package patreon

import "encoding/json"

// TokenResponse is the body of a successful OAuth token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Identity represents the response from the Patreon Identity API.
type Identity struct {
	Included []Included `json:"included"`
}

// Included is one element of the identity endpoint's side-loaded resource
// list. The list mixes memberships with campaigns, users and whatever
// else Patreon decides to return, so decoding is lenient: entries that do
// not look like a membership leave Membership nil and are skipped by
// callers.
type Included struct {
	Membership *Membership
}

func (s *Included) UnmarshalJSON(b []byte) error {
	var m Membership
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	if m.Relationships.Campaign.Data.ID == "" || m.Attributes.Title == "" {
		return nil
	}
	s.Membership = &m
	return nil
}

// Membership carries the campaign relationship and the tier title of one
// entitled membership.
type Membership struct {
	Relationships Relationships `json:"relationships"`
	Attributes    Attributes    `json:"attributes"`
}

// Relationships contains related data references.
type Relationships struct {
	Campaign Campaign `json:"campaign"`
}

// Campaign represents the campaign relationship.
type Campaign struct {
	Data Data `json:"data"`
}

// Data represents a relationship data reference.
type Data struct {
	ID string `json:"id"`
}

// Attributes contains tier-specific attributes.
type Attributes struct {
	Title string `json:"title"`
}
