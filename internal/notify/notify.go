// Package notify delivers account emails. The default implementation only
// logs the message; a real mail provider can be swapped in behind Notifier.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

// Notifier sends account notifications. Implementations are best-effort;
// callers log and continue when delivery fails.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
	SendDecision(ctx context.Context, email string, approved bool, reason string) error
}

// LogNotifier writes would-be emails to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(ctx context.Context, email, token string) error {
	first, _ := deriveNameFromEmail(email)
	n.logger.InfoContext(ctx, "verification email",
		"to", email,
		"greeting", "Hello "+first,
		"token", token,
	)
	return nil
}

func (n *LogNotifier) SendDecision(ctx context.Context, email string, approved bool, reason string) error {
	outcome := "approved"
	if !approved {
		outcome = "rejected"
	}
	n.logger.InfoContext(ctx, "decision email",
		"to", email,
		"outcome", outcome,
		"reason", reason,
	)
	return nil
}

// deriveNameFromEmail guesses a greeting name from the local part of an
// address, e.g. "jane.doe@x" yields ("Jane", "Doe").
func deriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
