package security

import "github.com/Rrens/article-hub/internal/domain"

// RequireOwner fails unless the caller is the resource's author. An empty
// author reference never matches.
func RequireOwner(authorID string, caller *domain.User) error {
	if caller == nil || authorID == "" || authorID != caller.ID {
		return domain.ErrNotOwner
	}
	return nil
}
