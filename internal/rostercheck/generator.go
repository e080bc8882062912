package rostercheck

import (
	"strings"

	"github.com/google/uuid"
)

// generateEmails returns n distinct student emails under domain.
func generateEmails(n int, domain string) []string {
	emails := make([]string, n)
	for i := range emails {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		emails[i] = "student-" + id[:12] + "@" + domain
	}
	return emails
}
