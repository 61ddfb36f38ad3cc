package migration

import (
	"context"
	"sort"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
)

var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Versions returns the registered migrator versions in ascending order.
func Versions() []string {
	versions := make([]string, 0, len(Migrators))
	for v := range Migrators {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Game{},
		&entity.Quest{},
		&entity.Badge{},
		&entity.UserBadge{},
		&entity.UserQuest{},
		&entity.QuestSubmission{},
		&entity.ShoutBoardMessage{},
	)
}
