package interfaces

import "context"

type KafkaPublisherInterface interface {
	Publish(ctx context.Context, key, value []byte) error
}
