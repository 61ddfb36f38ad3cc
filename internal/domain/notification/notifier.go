package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questbycycle/backend/internal/domain/notification/event"
	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/internal/repository"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/pubsub"
	"github.com/questbycycle/backend/pkg/xcontext"
)

// Notifier writes messages to the shout board of a game. Every message is
// stored first, then broadcast to the live subscribers of the game.
type Notifier interface {
	// Always return errorx in this method.
	Shout(ctx context.Context, gameID, userID, message string) (*entity.ShoutBoardMessage, error)

	// Always return errorx in this method.
	BadgeAwarded(ctx context.Context, gameID, userID string, badge *entity.Badge) error
}

type notifier struct {
	shoutBoardRepo repository.ShoutBoardRepository
	publisher      pubsub.Publisher
	idGenerator    *snowflake.Node
}

func NewNotifier(
	shoutBoardRepo repository.ShoutBoardRepository,
	publisher pubsub.Publisher,
	idGenerator *snowflake.Node,
) *notifier {
	return &notifier{
		shoutBoardRepo: shoutBoardRepo,
		publisher:      publisher,
		idGenerator:    idGenerator,
	}
}

func (n *notifier) Shout(
	ctx context.Context, gameID, userID, message string,
) (*entity.ShoutBoardMessage, error) {
	msg, err := n.store(ctx, gameID, userID, message)
	if err != nil {
		return nil, err
	}

	n.publish(ctx, gameID, toShoutEvent(msg))
	return msg, nil
}

func (n *notifier) BadgeAwarded(
	ctx context.Context, gameID, userID string, badge *entity.Badge,
) error {
	msg, err := n.store(ctx, gameID, userID, fmt.Sprintf("earned the badge %s", badge.Name))
	if err != nil {
		return err
	}

	n.publish(ctx, gameID, event.BadgeAwardedEvent{
		ShoutEvent: toShoutEvent(msg),
		BadgeID:    badge.ID,
	})
	return nil
}

func (n *notifier) store(
	ctx context.Context, gameID, userID, message string,
) (*entity.ShoutBoardMessage, error) {
	msg := &entity.ShoutBoardMessage{
		SnowFlakeBase: entity.SnowFlakeBase{
			ID:        n.idGenerator.Generate().Int64(),
			CreatedAt: time.Now().UTC(),
		},
		GameID:  gameID,
		UserID:  userID,
		Message: message,
	}

	if err := n.shoutBoardRepo.Create(ctx, msg); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create shout board message: %v", err)
		return nil, errorx.Unknown
	}

	return msg, nil
}

// publish is best effort, the message is already on the board.
func (n *notifier) publish(ctx context.Context, gameID string, ev event.Event) {
	b, err := json.Marshal(event.New(ev, event.Metadata{To: gameID}))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.NotificationTopic
	err = n.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(gameID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish %s event: %v", ev.Op(), err)
	}
}

func toShoutEvent(msg *entity.ShoutBoardMessage) event.ShoutEvent {
	return event.ShoutEvent{
		ID:        snowflake.ParseInt64(msg.ID).String(),
		GameID:    msg.GameID,
		UserID:    msg.UserID,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
}
