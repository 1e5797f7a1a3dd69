package feedback

import (
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/navguard-dev/navguard/pkg/guard"
)

func rejectOf(result guard.Result, t *testing.T) guard.Reject {
	t.Helper()
	r, ok := result.Reject()
	if !ok {
		t.Fatalf("result %v is not a reject", result)
	}
	return r
}

func TestMessageSuppressedWithoutShowError(t *testing.T) {
	l := NewCatalog().Localizer("en")
	r := rejectOf(guard.RejectWith("auth.required"), t)

	if got := l.Message(r); got != "" {
		t.Errorf("Message = %q, want empty for ShowError=false", got)
	}
}

func TestMessageFallsBackToRawReason(t *testing.T) {
	l := NewCatalog().Localizer("en")
	r := rejectOf(guard.RejectWith("subscription expired", guard.WithShowError()), t)

	if got := l.Message(r); got != "subscription expired" {
		t.Errorf("Message = %q, want raw reason fallback", got)
	}
}

func TestMessageLocalizesKnownID(t *testing.T) {
	c := NewCatalog()
	if err := c.AddMessages(language.English, &i18n.Message{
		ID:    "auth.required",
		Other: "Please sign in to continue.",
	}); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}
	if err := c.AddMessages(language.German, &i18n.Message{
		ID:    "auth.required",
		Other: "Bitte melde dich an.",
	}); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}

	r := rejectOf(guard.RejectWith("auth.required", guard.WithShowError()), t)

	if got := c.Localizer("en").Message(r); got != "Please sign in to continue." {
		t.Errorf("en Message = %q", got)
	}
	if got := c.Localizer("de").Message(r); got != "Bitte melde dich an." {
		t.Errorf("de Message = %q", got)
	}
}

func TestMessageEmptyReasonUsesFallbackID(t *testing.T) {
	l := NewCatalog().Localizer("en")
	r := rejectOf(guard.RejectWith("", guard.WithShowError()), t)

	if got := l.Message(r); got != "You can't go there right now." {
		t.Errorf("Message = %q, want built-in fallback", got)
	}
}
