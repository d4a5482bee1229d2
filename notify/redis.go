package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/approvd/approvd/util"
	rd "github.com/go-redis/redis/v9"
)

const NOTIFICATION_CHANNEL string = "notifications"

type RedisConfig struct {
	Addrs     []string
	Namespace string
}

// RedisNotifier publishes notification envelopes on a pub/sub channel for
// external delivery agents (mail, chat) to consume.
type RedisNotifier struct {
	redisClient rd.UniversalClient
	channel     string
	codec       util.Codec[Notification]
}

var _ Notifier = new(RedisNotifier)

func NewRedisNotifier(conf RedisConfig) *RedisNotifier {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: conf.Addrs,
	})
	return &RedisNotifier{
		redisClient: redisClient,
		channel:     fmt.Sprintf("%s:%s", conf.Namespace, NOTIFICATION_CHANNEL),
		codec:       util.NewJsonCodec[Notification](),
	}
}

func (n *RedisNotifier) Notify(recipients []string, message string) error {
	data, err := n.codec.Encode(Notification{
		Recipients: recipients,
		Message:    message,
		At:         time.Now(),
	})
	if err != nil {
		return err
	}
	return n.redisClient.Publish(context.Background(), n.channel, string(data)).Err()
}
