// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
)

const (
	lockRoot   = "/distributed_locks" // 所有分布式锁的根节点
	lockPrefix = "lock-"
)

var ErrLockTimeout = errors.New("timeout waiting for lock")

// Conn 是分布式锁需要的 ZooKeeper 操作子集，*zk.Conn 满足该接口
type Conn interface {
	Exists(path string) (bool, *zk.Stat, error)
	ExistsW(path string) (bool, *zk.Stat, <-chan zk.Event, error)
	Create(path string, data []byte, flags int32, acl []zk.ACL) (string, error)
	CreateProtectedEphemeralSequential(path string, data []byte, acl []zk.ACL) (string, error)
	Children(path string) ([]string, *zk.Stat, error)
	Delete(path string, version int32) error
}

// Connect 建立到 ZooKeeper 集群的会话
func Connect(servers []string, sessionTimeout time.Duration) (*zk.Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrap(err, "zookeeper: connect")
	}
	zlog.Info().Strs("servers", servers).Msg("✅ Successfully connected to ZooKeeper.")
	return conn, nil
}

// DistributedLock 定义了一个分布式锁对象
type DistributedLock struct {
	conn     Conn
	path     string // 锁的路径，例如 /distributed_locks/order-R100
	lockNode string // 成功获取锁后，自己创建的节点路径
	timeout  time.Duration
}

// NewDistributedLock 创建一个新的分布式锁实例，resourceID 不能包含 "/"
func NewDistributedLock(conn Conn, resourceID string, timeout time.Duration) (*DistributedLock, error) {
	if resourceID == "" || strings.Contains(resourceID, "/") {
		return nil, fmt.Errorf("invalid lock resource id %q", resourceID)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lockPath := lockRoot + "/" + resourceID
	for _, p := range []string{lockRoot, lockPath} {
		if err := ensureNode(conn, p); err != nil {
			return nil, err
		}
	}
	return &DistributedLock{conn: conn, path: lockPath, timeout: timeout}, nil
}

func ensureNode(conn Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return errors.Wrapf(err, "check node %s", path)
	}
	if exists {
		return nil
	}
	_, err = conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err != nil && !errors.Is(err, zk.ErrNodeExists) {
		return errors.Wrapf(err, "create node %s", path)
	}
	return nil
}

// Lock 尝试获取锁，获取不到则阻塞等待，直到 ctx 结束或超时
func (l *DistributedLock) Lock(ctx context.Context) error {
	// 1. 在锁路径下创建一个临时顺序节点，父节点可能刚被其他持有者的 Unlock 删掉
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/"+lockPrefix, []byte(""), zk.WorldACL(zk.PermAll))
	if errors.Is(err, zk.ErrNoNode) {
		if err = ensureNode(l.conn, l.path); err != nil {
			return err
		}
		nodePath, err = l.conn.CreateProtectedEphemeralSequential(l.path+"/"+lockPrefix, []byte(""), zk.WorldACL(zk.PermAll))
	}
	if err != nil {
		return errors.Wrap(err, "failed to create sequential node")
	}
	l.lockNode = nodePath
	myNodeName := strings.TrimPrefix(nodePath, l.path+"/")

	deadline := time.NewTimer(l.timeout)
	defer deadline.Stop()

	for {
		// 2. 获取锁路径下的所有子节点，按序号排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.release()
			return errors.Wrap(err, "failed to get children nodes")
		}
		sortBySequence(children)

		// 3. 判断自己是否是最小的节点
		idx := indexOf(children, myNodeName)
		if idx < 0 {
			l.lockNode = ""
			return errors.New("lock node vanished, session may have expired")
		}
		if idx == 0 {
			return nil
		}

		// 4. 不是最小节点，只监听前一个节点，避免羊群效应
		prevNodePath := l.path + "/" + children[idx-1]
		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			l.release()
			return errors.Wrap(err, "failed to watch previous node")
		}
		if !exists {
			continue
		}

		select {
		case <-eventChan:
			// 前一个节点被删除或发生变化，重新竞争
		case <-ctx.Done():
			l.release()
			return ctx.Err()
		case <-deadline.C:
			l.release()
			return ErrLockTimeout
		}
	}
}

// Unlock 释放锁，没有其他等待者时顺带删除资源节点
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		return errors.Wrap(err, "failed to delete lock node")
	}
	l.lockNode = ""

	// 还有子节点说明有人在排队，留给最后一个持有者删除
	err = l.conn.Delete(l.path, -1)
	if err != nil && !errors.Is(err, zk.ErrNotEmpty) && !errors.Is(err, zk.ErrNoNode) {
		zlog.Warn().Err(err).Str("path", l.path).Msg("failed to delete lock parent node")
	}
	return nil
}

func (l *DistributedLock) release() {
	if l.lockNode == "" {
		return
	}
	if err := l.Unlock(); err != nil {
		zlog.Warn().Err(err).Str("node", l.lockNode).Msg("failed to release lock node")
	}
}

// sortBySequence 按 zk 追加的 10 位序号排序。
// protected 节点名带 GUID 前缀，直接按字符串排序会打乱先后顺序。
func sortBySequence(children []string) {
	sort.SliceStable(children, func(i, j int) bool {
		return sequenceOf(children[i]) < sequenceOf(children[j])
	})
}

func sequenceOf(name string) int64 {
	if len(name) < 10 {
		return -1
	}
	seq, err := strconv.ParseInt(name[len(name)-10:], 10, 64)
	if err != nil {
		return -1
	}
	return seq
}

func indexOf(children []string, name string) int {
	for i, c := range children {
		if c == name {
			return i
		}
	}
	return -1
}
