package infrastructure

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"storefront/internal/pkg/zookeeper"
)

// ZkLocker 用 ZooKeeper 临时顺序节点实现 port.Locker
type ZkLocker struct {
	conn    zookeeper.Conn
	timeout time.Duration
}

func NewZkLocker(conn zookeeper.Conn, timeout time.Duration) *ZkLocker {
	return &ZkLocker{conn: conn, timeout: timeout}
}

func (l *ZkLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, key, l.timeout)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			// 会话过期时临时节点会被 ZooKeeper 清理
			zlog.Warn().Err(err).Str("key", key).Msg("failed to release promotion lock")
		}
	}, nil
}
