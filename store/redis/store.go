package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	"github.com/approvd/approvd/store"
	"github.com/approvd/approvd/util"
	rd "github.com/go-redis/redis/v9"
	"go.uber.org/zap"
)

const REQUEST_KEY string = "REQUEST"

type Config struct {
	Addrs     []string
	Namespace string
}

// RequestStore keeps aggregates in a single redis hash keyed by request id.
// The engine still serializes mutations per request, so plain HSet is enough.
type RequestStore struct {
	redisClient rd.UniversalClient
	namespace   string
	codec       util.Codec[model.Request]
}

var _ store.RequestStore = new(RequestStore)

func NewRequestStore(conf Config, codec util.Codec[model.Request]) *RequestStore {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: conf.Addrs,
	})
	return &RequestStore{
		redisClient: redisClient,
		namespace:   conf.Namespace,
		codec:       codec,
	}
}

func (rs *RequestStore) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", rs.namespace, strings.Join(args, ":"))
}

func (rs *RequestStore) Create(req *model.Request) error {
	key := rs.getNamespaceKey(REQUEST_KEY)
	ctx := context.Background()
	data, err := rs.codec.Encode(*req)
	if err != nil {
		return err
	}
	created, err := rs.redisClient.HSetNX(ctx, key, req.Id, string(data)).Result()
	if err != nil {
		logger.Error("error in creating request", zap.String("requestId", req.Id), zap.Error(err))
		return store.StorageLayerError{Message: err.Error()}
	}
	if !created {
		return store.DuplicateIdError{Id: req.Id}
	}
	return nil
}

func (rs *RequestStore) Save(req *model.Request) error {
	key := rs.getNamespaceKey(REQUEST_KEY)
	ctx := context.Background()
	data, err := rs.codec.Encode(*req)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, req.Id, string(data)).Err(); err != nil {
		logger.Error("error in saving request", zap.String("requestId", req.Id), zap.Error(err))
		return store.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *RequestStore) Get(id string) (*model.Request, error) {
	key := rs.getNamespaceKey(REQUEST_KEY)
	ctx := context.Background()
	data, err := rs.redisClient.HGet(ctx, key, id).Result()
	if err == rd.Nil {
		return nil, store.NotFoundError{Id: id}
	}
	if err != nil {
		logger.Error("error in getting request", zap.String("requestId", id), zap.Error(err))
		return nil, store.StorageLayerError{Message: err.Error()}
	}
	return rs.codec.Decode([]byte(data))
}

func (rs *RequestStore) List(filter store.Filter) ([]*model.Request, error) {
	key := rs.getNamespaceKey(REQUEST_KEY)
	ctx := context.Background()
	entries, err := rs.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Error("error in listing requests", zap.Error(err))
		return nil, store.StorageLayerError{Message: err.Error()}
	}
	result := make([]*model.Request, 0, len(entries))
	for id, data := range entries {
		req, err := rs.codec.Decode([]byte(data))
		if err != nil {
			logger.Error("can not decode stored request", zap.String("requestId", id), zap.Error(err))
			continue
		}
		if filter.Matches(req) {
			result = append(result, req)
		}
	}
	return result, nil
}
