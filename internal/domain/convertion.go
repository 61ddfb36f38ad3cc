package domain

import (
	"strconv"
	"time"

	"github.com/questbycycle/backend/internal/domain/questclaim"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func convertUser(user *entity.User, includeSensitive bool) model.User {
	if user == nil {
		return model.User{}
	}

	u := model.User{
		ID:    user.ID,
		Name:  user.Name,
		Score: user.Score,
	}

	if includeSensitive {
		u.Email = user.Email
		u.Role = string(user.Role)
	}

	return u
}

func convertGame(game *entity.Game, now time.Time) model.Game {
	if game == nil {
		return model.Game{}
	}

	return model.Game{
		ID:          game.ID,
		Title:       game.Title,
		Description: game.Description,
		GameCode:    game.GameCode,
		StartDate:   game.StartDate.Format(defaultTimeLayout),
		EndDate:     game.EndDate.Format(defaultTimeLayout),
		IsActive:    game.IsActive(now),
		CreatedBy:   game.CreatedBy,
	}
}

func convertQuest(quest *entity.Quest) model.Quest {
	if quest == nil {
		return model.Quest{}
	}

	return model.Quest{
		ID:               quest.ID,
		GameID:           quest.GameID,
		Title:            quest.Title,
		Description:      quest.Description,
		Points:           quest.Points,
		CompletionLimit:  quest.CompletionLimit,
		Frequency:        string(entity.ParseFrequency(string(quest.Frequency))),
		Category:         quest.Category,
		VerificationType: string(entity.ParseVerificationType(string(quest.VerificationType))),
		BadgeID:          quest.BadgeID.String,
		Enabled:          quest.Enabled(),
		CreatedAt:        quest.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertBadge(badge *entity.Badge) model.Badge {
	if badge == nil {
		return model.Badge{}
	}

	return model.Badge{
		ID:          badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		ImageURL:    badge.ImageURL,
		Category:    badge.Category,
	}
}

func convertEligibility(e *questclaim.Eligibility) model.Eligibility {
	if e == nil {
		return model.Eligibility{}
	}

	result := model.Eligibility{Allowed: e.Allowed}
	if e.NextEligibleAt != nil {
		result.NextEligibleAt = e.NextEligibleAt.Format(defaultTimeLayout)
	}

	return result
}

func convertQuestSubmission(s *entity.QuestSubmission) model.QuestSubmission {
	if s == nil {
		return model.QuestSubmission{}
	}

	return model.QuestSubmission{
		ID:           s.ID,
		UserID:       s.UserID,
		QuestID:      s.QuestID,
		ImageURL:     s.ImageURL,
		Comment:      s.Comment,
		TwitterURL:   s.TwitterURL,
		FacebookURL:  s.FacebookURL,
		InstagramURL: s.InstagramURL,
		CreatedAt:    s.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertUserQuest(uq *entity.UserQuest) model.UserQuest {
	if uq == nil {
		return model.UserQuest{}
	}

	result := model.UserQuest{
		QuestID:       uq.QuestID,
		Completions:   uq.Completions,
		PointsAwarded: uq.PointsAwarded,
	}

	if !uq.CompletedAt.IsZero() {
		result.CompletedAt = uq.CompletedAt.Format(defaultTimeLayout)
	}

	return result
}

func convertShoutBoardMessage(msg *entity.ShoutBoardMessage) model.ShoutBoardMessage {
	if msg == nil {
		return model.ShoutBoardMessage{}
	}

	return model.ShoutBoardMessage{
		ID:        strconv.FormatInt(msg.ID, 10),
		GameID:    msg.GameID,
		UserID:    msg.UserID,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt.Format(defaultTimeLayout),
	}
}
