package interfaces

import "context"

type PublisherInterface interface {
	Publish(ctx context.Context, msg []byte, attributes map[string]string) error
	Stop()
}

type PubSubPublisherClientInterface interface {
	Publisher(topic string) PublisherInterface
	Close() error
}

// RuntimePubSubPublisher publishes to a named topic.
type RuntimePubSubPublisher interface {
	Publish(ctx context.Context, topic string, msg []byte, attributes map[string]string) error
}
