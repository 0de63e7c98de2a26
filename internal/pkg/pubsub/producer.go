package pubsub

import (
	"context"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/service/interfaces"
)

// PubSubPublisher publishes to topics, reusing one publisher per topic.
type PubSubPublisher struct {
	PubSubClient interfaces.PubSubPublisherClientInterface

	mu         sync.Mutex
	publishers map[string]interfaces.PublisherInterface
}

// PubSubPublisherClientFactory makes new clients (mockable in tests).
type PubSubPublisherClientFactory interface {
	NewPubSubPublisherClient(ctx context.Context, projectID string) (interfaces.PubSubPublisherClientInterface, error)
}

type defaultPubSubPublisherClientFactory struct{}

func (f *defaultPubSubPublisherClientFactory) NewPubSubPublisherClient(ctx context.Context,
	projectID string) (interfaces.PubSubPublisherClientInterface, error) {
	sdkClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &pubSubPublisherClientAdapter{client: sdkClient}, nil
}

type pubSubPublisherClientAdapter struct {
	client *pubsub.Client
}

func (c *pubSubPublisherClientAdapter) Publisher(topic string) interfaces.PublisherInterface {
	return &publisherAdapter{publisher: c.client.Publisher(topic)}
}

func (c *pubSubPublisherClientAdapter) Close() error {
	return c.client.Close()
}

type publisherAdapter struct {
	publisher *pubsub.Publisher
}

func (p *publisherAdapter) Publish(ctx context.Context, msg []byte, attributes map[string]string) error {
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       msg,
		Attributes: attributes,
	})
	_, err := result.Get(ctx)
	return err
}

func (p *publisherAdapter) Stop() {
	p.publisher.Stop()
}

// NewPubSubPublisher is the default constructor for production use.
func NewPubSubPublisher(ctx context.Context, projectID string) (*PubSubPublisher, error) {
	return NewPubSubPublisherWithFactory(ctx, projectID, &defaultPubSubPublisherClientFactory{})
}

func NewPubSubPublisherWithFactory(ctx context.Context, projectID string,
	factory PubSubPublisherClientFactory) (*PubSubPublisher, error) {
	client, err := factory.NewPubSubPublisherClient(ctx, projectID)
	if err != nil {
		logger.CtxError(ctx, "Failed creating PubSub client", err)
		return nil, err
	}
	logger.CtxInfo(ctx, "PubSub publisher created", zap.String("project_id", projectID))

	return &PubSubPublisher{
		PubSubClient: client,
		publishers:   make(map[string]interfaces.PublisherInterface),
	}, nil
}

func (p *PubSubPublisher) publisher(topic string) interfaces.PublisherInterface {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pub, ok := p.publishers[topic]; ok {
		return pub
	}
	pub := p.PubSubClient.Publisher(topic)
	p.publishers[topic] = pub
	return pub
}

// Publish blocks until the server acknowledges the message.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, msg []byte, attributes map[string]string) error {
	return p.publisher(topic).Publish(ctx, msg, attributes)
}

func (p *PubSubPublisher) Close() error {
	p.mu.Lock()
	for topic, pub := range p.publishers {
		pub.Stop()
		delete(p.publishers, topic)
	}
	p.mu.Unlock()
	return p.PubSubClient.Close()
}
