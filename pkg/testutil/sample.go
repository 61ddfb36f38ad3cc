package testutil

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
)

// SampleQuest creates a new daily photo quest of ActiveGame. The sample quest
// can be overwritten by non-zero fields of init.
//
// This function returns the sample quest.
func SampleQuest(ctx context.Context, init *entity.Quest) (entity.Quest, error) {
	sample := &entity.Quest{
		Base:             entity.Base{ID: uuid.NewString()},
		GameID:           ActiveGame.ID,
		Title:            uuid.NewString(),
		Points:           10,
		CompletionLimit:  1,
		Frequency:        entity.FrequencyDaily,
		VerificationType: entity.VerificationPhoto,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewQuestRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleBadge(ctx context.Context, init *entity.Badge) (entity.Badge, error) {
	sample := &entity.Badge{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        uuid.NewString(),
		Description: "sample badge",
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewBadgeRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleSubmission inserts a submission made at the given time without going
// through the eligibility check.
func SampleSubmission(
	ctx context.Context, userID, questID string, createdAt time.Time,
) (entity.QuestSubmission, error) {
	sample := &entity.QuestSubmission{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: createdAt,
		},
		UserID:   userID,
		QuestID:  questID,
		ImageURL: "https://example.com/evidence.jpg",
	}

	if err := repository.NewQuestSubmissionRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
