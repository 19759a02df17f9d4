// internal/pkg/redis/client.go
package redis

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
)

// ErrNil 表示 key 不存在
var ErrNil = goredis.Nil

// Client 封装 go-redis 的 UniversalClient：一个地址时是单节点，多个地址时是集群。
type Client struct {
	client goredis.UniversalClient
}

// NewClient addrs 格式为 "host1:port1,host2:port2"
func NewClient(addrs string) (*Client, error) {
	var list []string
	for _, a := range strings.Split(addrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			list = append(list, a)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("redis: no address configured")
	}

	c := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        list,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "redis: ping %s", addrs)
	}
	zlog.Info().Strs("addrs", list).Msg("✅ Successfully connected to Redis.")
	return &Client{client: c}, nil
}

// NewClientFrom 包装一个已有的 go-redis 客户端
func NewClientFrom(c goredis.UniversalClient) *Client {
	return &Client{client: c}
}

// GetClient 暴露底层客户端，用于 pipeline 等高级操作
func (c *Client) GetClient() goredis.UniversalClient {
	return c.client
}

// GetBytes 读取 key；不存在时返回 ErrNil
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *Client) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
