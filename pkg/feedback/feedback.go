// Package feedback turns guard rejections into localized user-facing
// messages.
//
// A Reject's ShowError flag is a signal, not an action: the navigation
// core never renders anything. UI layers that do choose to surface
// feedback can resolve the rejection through a Catalog, treating the
// reject reason as a message ID with the raw reason as fallback.
package feedback

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/navguard-dev/navguard/pkg/guard"
)

// FallbackID is the message ID used when a rejection carries no reason.
const FallbackID = "navguard.blocked"

// Catalog holds the translation bundle for rejection messages.
type Catalog struct {
	bundle *i18n.Bundle
}

// NewCatalog creates a catalog with the built-in English defaults.
func NewCatalog() *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.AddMessages(language.English, &i18n.Message{
		ID:    FallbackID,
		Other: "You can't go there right now.",
	})
	return &Catalog{bundle: bundle}
}

// AddMessages registers messages for a language. Message IDs are
// matched against reject reasons.
func (c *Catalog) AddMessages(tag language.Tag, messages ...*i18n.Message) error {
	return c.bundle.AddMessages(tag, messages...)
}

// Localizer resolves messages for the given language preferences, most
// preferred first (for example the contents of an Accept-Language
// header).
func (c *Catalog) Localizer(langs ...string) *Localizer {
	return &Localizer{loc: i18n.NewLocalizer(c.bundle, langs...)}
}

// Localizer renders rejection feedback in one language preference set.
type Localizer struct {
	loc *i18n.Localizer
}

// Message returns the user-facing text for a rejection, or "" when the
// rejection should not be surfaced (ShowError unset).
//
// The reject reason is tried as a message ID first; an unknown ID falls
// back to the raw reason so ad-hoc reasons still surface. An empty
// reason localizes FallbackID.
func (l *Localizer) Message(r guard.Reject) string {
	if !r.ShowError {
		return ""
	}

	id := r.Reason
	if id == "" {
		id = FallbackID
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return r.Reason
	}
	return msg
}
