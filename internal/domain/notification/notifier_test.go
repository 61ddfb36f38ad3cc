package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/pubsub"
	"github.com/questbycycle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, publisher pubsub.Publisher) *notifier {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewNotifier(repository.NewShoutBoardRepository(), publisher, node)
}

func Test_notifier_BadgeAwarded(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var topic string
	var published map[string]any
	n := newTestNotifier(t, &testutil.MockPublisher{
		PublishFunc: func(_ context.Context, tp string, pack *pubsub.Pack) error {
			topic = tp
			require.Equal(t, testutil.ActiveGame.ID, string(pack.Key))
			return json.Unmarshal(pack.Msg, &published)
		},
	})

	badge := &entity.Badge{Base: entity.Base{ID: "badge1"}, Name: "Commuter"}
	err := n.BadgeAwarded(ctx, testutil.ActiveGame.ID, testutil.User1.ID, badge)
	require.NoError(t, err)

	require.Equal(t, "notification", topic)
	require.Equal(t, "badge_awarded", published["o"])
	data := published["d"].(map[string]any)
	require.Equal(t, "badge1", data["badge_id"])
	require.Equal(t, testutil.User1.ID, data["user_id"])

	msgs, err := repository.NewShoutBoardRepository().GetByGameID(ctx, testutil.ActiveGame.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "earned the badge Commuter", msgs[0].Message)
}

func Test_notifier_PublishFailureKeepsMessage(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	n := newTestNotifier(t, &testutil.MockPublisher{
		PublishFunc: func(context.Context, string, *pubsub.Pack) error {
			return errors.New("broker is down")
		},
	})

	first, err := n.Shout(ctx, testutil.ActiveGame.ID, testutil.User1.ID, "first")
	require.NoError(t, err)
	second, err := n.Shout(ctx, testutil.ActiveGame.ID, testutil.User2.ID, "second")
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	msgs, err := repository.NewShoutBoardRepository().GetByGameID(ctx, testutil.ActiveGame.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "second", msgs[0].Message)

	msgs, err = repository.NewShoutBoardRepository().GetByGameID(ctx, testutil.ActiveGame.ID, second.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "first", msgs[0].Message)
}
