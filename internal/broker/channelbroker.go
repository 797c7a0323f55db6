package broker

type publication[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

type subscription[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan chan TPayload
}

// ChannelBroker hands a channel with ID from a producer to the first consumer.
// Subsequent consumers block until the producer finishes so that they can
// resolve the situation e.g. by reading the persisted ingestion status from
// the database.
//
// This is how document-processing progress reaches the SSE endpoint. The
// producer is the goroutine spawned by the processing request; the first
// consumer is the HTTP handler serving the event stream. Subsequent consumers
// usually mean a reconnect, and for them waiting for the final persisted
// state is the right answer.
type ChannelBroker[TID comparable, TPayload any] struct {
	stopChannel      chan struct{}
	publishChannel   chan publication[TID, TPayload]
	unpublishChannel chan TID
	subscribeChannel chan subscription[TID, TPayload]
}

// NewChannelBroker creates a ChannelBroker. Call Start in a goroutine and
// Stop when done.
func NewChannelBroker[TID comparable, TPayload any]() *ChannelBroker[TID, TPayload] {
	broker := ChannelBroker[TID, TPayload]{
		stopChannel:      make(chan struct{}),
		publishChannel:   make(chan publication[TID, TPayload]),
		unpublishChannel: make(chan TID),
		subscribeChannel: make(chan subscription[TID, TPayload]),
	}
	return &broker
}

// Start listens for publish, unpublish, and subscribe events. It blocks until
// Stop is called, so it should run in a goroutine. It does not handle panics.
func (b *ChannelBroker[TID, TPayload]) Start() {
	publishedChannels := map[TID]chan TPayload{}
	subscriberLists := map[TID][]chan chan TPayload{}
	for {
		select {
		case <-b.stopChannel:
			return

		case sub := <-b.subscribeChannel:
			c := publishedChannels[sub.ID]
			if c == nil {
				// Producer finished or never started.
				close(sub.Channel)
				break
			}
			subscribers := subscriberLists[sub.ID]
			if subscribers == nil {
				// First subscriber gets the channel from the producer.
				subscribers = []chan chan TPayload{sub.Channel}
				subscriberLists[sub.ID] = subscribers
				sub.Channel <- c
			} else {
				// Subsequent subscribers block until the producer is finished.
				subscriberLists[sub.ID] = append(subscribers, sub.Channel)
			}

		case pub := <-b.publishChannel:
			publishedChannels[pub.ID] = pub.Channel

		case id := <-b.unpublishChannel:
			// The first subscriber already received the live channel; the
			// rest are waiting and must be released by closing their channels.
			for i, waiting := range subscriberLists[id] {
				if i > 0 {
					close(waiting)
				}
			}
			delete(publishedChannels, id)
			delete(subscriberLists, id)
		}
	}
}

// Stop shuts down the broker goroutine.
func (b *ChannelBroker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe to the channel with ID. The returned channel yields the
// producer's channel, or closes without a value when the producer has
// finished or not started. If there is already a subscriber, the returned
// channel closes once the producer unpublishes.
func (b *ChannelBroker[TID, TPayload]) Subscribe(id TID) chan chan TPayload {
	channel := make(chan chan TPayload, 1)
	b.subscribeChannel <- subscription[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}
	return channel
}

// Publish the channel with ID so the first subscriber can pick it up.
func (b *ChannelBroker[TID, TPayload]) Publish(id TID, channel chan TPayload) {
	b.publishChannel <- publication[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}
}

// Unpublish removes the channel with ID from the broker. Use an unbuffered
// channel so the producer blocks until a consumer arrives, with a timeout on
// the producer side when consumers are unreliable.
func (b *ChannelBroker[TID, TPayload]) Unpublish(id TID) {
	b.unpublishChannel <- id
}
