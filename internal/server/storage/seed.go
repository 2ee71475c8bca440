package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
)

const (
	BadgeNewcomer      = "Newcomer"
	BadgeFirstPost     = "First Post"
	BadgeFirstThread   = "First Thread"
	BadgeHelpingHand   = "Helping Hand"
	BadgeCodeMaster    = "Code Master"
	BadgeActiveMember  = "Active Member"
	BadgeProblemSolver = "Problem Solver"
)

func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: "JavaScript", Description: "Discussions about JavaScript language and ecosystem", Color: "#f7df1e"},
		{Name: "Python", Description: "Python programming language discussions", Color: "#306998"},
		{Name: "React", Description: "React.js framework discussions", Color: "#61dafb"},
		{Name: "DevOps", Description: "DevOps practices and tools", Color: "#6c5ce7"},
		{Name: "Database", Description: "Database systems and design", Color: "#e74c3c"},
		{Name: "Security", Description: "Security concepts and best practices", Color: "#f39c12"},
	}
}

func DefaultBadges() []models.Badge {
	return []models.Badge{
		{Name: BadgeNewcomer, Description: "Welcome to the community!", Icon: "UserPlus", Color: "#4CAF50",
			Category: "account", Level: 1, ReputationPoints: 5, Criteria: models.BadgeCriteria{Type: "join", Threshold: 1}},
		{Name: BadgeFirstPost, Description: "Share your first post", Icon: "MessageSquare", Color: "#2196F3",
			Category: "participation", Level: 1, ReputationPoints: 5, Criteria: models.BadgeCriteria{Type: "posts", Threshold: 1}},
		{Name: BadgeFirstThread, Description: "Start your first discussion", Icon: "MessagesSquare", Color: "#03A9F4",
			Category: "participation", Level: 1, ReputationPoints: 10, Criteria: models.BadgeCriteria{Type: "threads", Threshold: 1}},
		{Name: BadgeHelpingHand, Description: "Get upvotes from the community", Icon: "ThumbsUp", Color: "#FFC107",
			Category: "reputation", Level: 1, ReputationPoints: 15, Criteria: models.BadgeCriteria{Type: "upvotes", Threshold: 10}},
		{Name: BadgeCodeMaster, Description: "Share quality code samples", Icon: "Code", Color: "#673AB7",
			Category: "code", Level: 2, ReputationPoints: 25, Criteria: models.BadgeCriteria{Type: "code_samples", Threshold: 5}},
		{Name: BadgeActiveMember, Description: "Regularly participate in discussions", Icon: "CalendarClock", Color: "#FF5722",
			Category: "participation", Level: 2, ReputationPoints: 20, Criteria: models.BadgeCriteria{Type: "posts", Threshold: 25}},
		{Name: BadgeProblemSolver, Description: "Help others solve programming challenges", Icon: "Lightbulb", Color: "#E91E63",
			Category: "reputation", Level: 3, ReputationPoints: 50, Criteria: models.BadgeCriteria{Type: "upvotes", Threshold: 50}},
	}
}

// Seed inserts the default categories and badges that are not present yet.
func Seed(ctx context.Context, s Storage) error {
	return s.WithinTx(ctx, func(tx Storage) error {
		cats, err := tx.GetCategories(ctx)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(cats))
		for _, c := range cats {
			have[c.Name] = true
		}
		for _, c := range DefaultCategories() {
			if have[c.Name] {
				continue
			}
			if _, err := tx.CreateCategory(ctx, &c); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}

		for _, b := range DefaultBadges() {
			_, err := tx.GetBadgeByName(ctx, b.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := tx.CreateBadge(ctx, &b); err != nil {
				return fmt.Errorf("seed badge %q: %w", b.Name, err)
			}
		}
		return nil
	})
}
