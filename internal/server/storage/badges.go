package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
)

type metric int

const (
	metricReputation metric = iota
	metricPosts
	metricThreads
)

var ladder = []struct {
	badge     string
	metric    metric
	threshold int
}{
	{BadgeHelpingHand, metricReputation, 10},
	{BadgeProblemSolver, metricReputation, 50},
	{BadgeFirstPost, metricPosts, 1},
	{BadgeActiveMember, metricPosts, 25},
	{BadgeFirstThread, metricThreads, 1},
}

// CheckAndAwardBadges walks the badge ladder once and returns the badges
// newly awarded. Reputation is re-read before every reputation step, so
// points credited by an earlier step in the same walk count; the walk is
// never repeated.
func CheckAndAwardBadges(ctx context.Context, s Storage, userID int64) ([]*models.Badge, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.CountPostsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	threads, err := s.CountThreadsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []*models.Badge
	for _, step := range ladder {
		var value int
		switch step.metric {
		case metricReputation:
			if value, err = s.GetUserReputation(ctx, userID); err != nil {
				return awarded, err
			}
		case metricPosts:
			value = posts
		case metricThreads:
			value = threads
		}
		if value < step.threshold {
			continue
		}

		badge, err := s.GetBadgeByName(ctx, step.badge)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return awarded, err
		}
		_, err = s.GetUserBadge(ctx, userID, badge.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return awarded, err
		}
		if _, err := s.AwardBadge(ctx, userID, badge.ID); err != nil {
			return awarded, fmt.Errorf("award %q: %w", badge.Name, err)
		}
		awarded = append(awarded, badge)
	}
	return awarded, nil
}

// BadgeNotification is the text of the notification sent on an award.
func BadgeNotification(b *models.Badge) string {
	return fmt.Sprintf("Congratulations! You've earned the \"%s\" badge: %s", b.Name, b.Description)
}
