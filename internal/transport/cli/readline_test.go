package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sandevgo/venuebot/internal/core"
)

func TestUserFacingTurnError_HidesInternalDetail(t *testing.T) {
	err := fmt.Errorf("reasoning failed: %w", core.NewFailure(core.FailureUnavailable, "http 503: upstream exploded"))

	msg := userFacingTurnError(err)
	if msg == "" {
		t.Fatal("expected a notice for the user")
	}
	for _, leak := range []string{"503", "unavailable", "upstream", "reasoning failed"} {
		if strings.Contains(msg, leak) {
			t.Errorf("internal detail %q leaked to the user: %q", leak, msg)
		}
	}
}

func TestUserFacingTurnError_KnownConditions(t *testing.T) {
	if msg := userFacingTurnError(core.ErrSessionClosed); !strings.Contains(msg, "ended") {
		t.Errorf("unexpected closed-session notice: %q", msg)
	}
	if msg := userFacingTurnError(context.Canceled); !strings.Contains(msg, "stopped") {
		t.Errorf("unexpected cancellation notice: %q", msg)
	}
}
