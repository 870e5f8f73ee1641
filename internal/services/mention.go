package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custor/portal-api/internal/models"
	"github.com/custor/portal-api/internal/repository"
	"gorm.io/gorm"
)

// NormalizeMention reduces a mention to the form matched against users:
// trimmed, one leading "@" removed, lower-cased.
func NormalizeMention(mention string) string {
	m := strings.TrimSpace(mention)
	m = strings.TrimPrefix(m, "@")
	return strings.ToLower(strings.TrimSpace(m))
}

// resolveMentions returns one user per mention that matches someone, in
// mention order. Repeated mentions of a user yield repeated entries.
func resolveMentions(ctx context.Context, users repository.UserRepository, mentions []string) ([]models.User, error) {
	var resolved []models.User
	for _, mention := range mentions {
		key := NormalizeMention(mention)
		if key == "" {
			continue
		}
		user, err := users.FindByMention(ctx, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve mention: %w", err)
		}
		resolved = append(resolved, *user)
	}
	return resolved, nil
}
