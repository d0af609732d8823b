// Package events carries the post-commit notifications the submission
// pipeline emits. The bus is in-process; consumers (cache invalidation,
// live updates) subscribe by topic.
package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/ochan-dev/ochan/internal/domain"
	"github.com/ochan-dev/ochan/internal/logger"
)

const TopicThreadNewReply = "thread.new_reply"

// ThreadNewReply is fired after a reply's transaction commits.
type ThreadNewReply struct {
	Board        domain.BoardURI   `json:"board"`
	ThreadNumber domain.PostNumber `json:"thread_number"`
	PostId       domain.PostId     `json:"post_id"`
	PostNumber   domain.PostNumber `json:"post_number"`
}

type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger.Log),
	)
	return &Bus{pubsub: pubsub}
}

func (b *Bus) PublishThreadNewReply(ev ThreadNewReply) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(TopicThreadNewReply, message.NewMessage(watermill.NewUUID(), payload))
}

func (b *Bus) SubscribeThreadNewReply(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicThreadNewReply)
}

func DecodeThreadNewReply(msg *message.Message) (ThreadNewReply, error) {
	var ev ThreadNewReply
	err := json.Unmarshal(msg.Payload, &ev)
	return ev, err
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
