package service

import (
	"context"
	"fmt"
	"html"

	"authd/internal/session"
)

// displayForIdentity builds the escaped HTML fragment shown for the session
// user on the switch-user page.
func displayForIdentity(identity session.Identity) string {
	return displayFragment(identity.UserID, identity.DisplayName)
}

// displayForUserID resolves a user id through the directory. Unknown users
// fall back to their escaped raw id; the page must render either way.
func (s *Service) displayForUserID(ctx context.Context, userID string) string {
	resolved, err := s.directory.Resolve(ctx, userID)
	if err != nil {
		return fmt.Sprintf("<strong>%s</strong>", html.EscapeString(userID))
	}
	return displayFragment(resolved.UserID, resolved.DisplayName)
}

// displayFragment prefers the display name, keeping the user id as a
// tooltip; a missing or redundant display name degrades to the bold id.
// Every interpolated value is escaped exactly once here.
func displayFragment(userID, displayName string) string {
	if displayName == "" || displayName == userID {
		return fmt.Sprintf("<strong>%s</strong>", html.EscapeString(userID))
	}
	return fmt.Sprintf("<span class='has-tooltip' data-original-title='%s'><strong>%s</strong></span>",
		html.EscapeString(userID), html.EscapeString(displayName))
}
