package zookeeper

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortBySequenceIgnoresProtectedPrefix(t *testing.T) {
	children := []string{
		"_c_ffffffffffffffffffffffffffffffff-lock-0000000012",
		"_c_00000000000000000000000000000000-lock-0000000013",
		"_c_88888888888888888888888888888888-lock-0000000002",
	}
	sortBySequence(children)

	assert.Equal(t, []string{
		"_c_88888888888888888888888888888888-lock-0000000002",
		"_c_ffffffffffffffffffffffffffffffff-lock-0000000012",
		"_c_00000000000000000000000000000000-lock-0000000013",
	}, children)
	assert.Equal(t, 1, indexOf(children, "_c_ffffffffffffffffffffffffffffffff-lock-0000000012"))
	assert.Equal(t, -1, indexOf(children, "missing"))
}

func TestNewDistributedLockRejectsNestedResource(t *testing.T) {
	_, err := NewDistributedLock(nil, "a/b", 0)
	require.Error(t, err)
	_, err = NewDistributedLock(nil, "", 0)
	require.Error(t, err)
}

// memConn 内存版 ZooKeeper，只实现锁用到的节点操作
type memConn struct {
	mu    sync.Mutex
	nodes map[string]struct{}
	seq   int
}

func newMemConn() *memConn {
	return &memConn{nodes: map[string]struct{}{"/": {}}}
}

func (c *memConn) Exists(p string) (bool, *zk.Stat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.nodes[p]
	return ok, &zk.Stat{}, nil
}

func (c *memConn) ExistsW(p string) (bool, *zk.Stat, <-chan zk.Event, error) {
	ok, stat, err := c.Exists(p)
	return ok, stat, make(chan zk.Event), err
}

func (c *memConn) Create(p string, _ []byte, _ int32, _ []zk.ACL) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p, c.create(p)
}

func (c *memConn) CreateProtectedEphemeralSequential(prefix string, _ []byte, _ []zk.ACL) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	dir, name := path.Split(prefix)
	p := fmt.Sprintf("%s_c_%032d-%s%010d", dir, c.seq, name, c.seq)
	return p, c.create(p)
}

func (c *memConn) create(p string) error {
	if _, ok := c.nodes[path.Dir(p)]; !ok {
		return zk.ErrNoNode
	}
	if _, ok := c.nodes[p]; ok {
		return zk.ErrNodeExists
	}
	c.nodes[p] = struct{}{}
	return nil
}

func (c *memConn) Children(p string) ([]string, *zk.Stat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[p]; !ok {
		return nil, nil, zk.ErrNoNode
	}
	return c.children(p), &zk.Stat{}, nil
}

func (c *memConn) children(p string) []string {
	var out []string
	for n := range c.nodes {
		if n != p && path.Dir(n) == p {
			out = append(out, strings.TrimPrefix(n, p+"/"))
		}
	}
	return out
}

func (c *memConn) Delete(p string, _ int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[p]; !ok {
		return zk.ErrNoNode
	}
	if len(c.children(p)) > 0 {
		return zk.ErrNotEmpty
	}
	delete(c.nodes, p)
	return nil
}

func (c *memConn) has(p string) bool {
	ok, _, _ := c.Exists(p)
	return ok
}

func TestUnlockRemovesIdleResourceNode(t *testing.T) {
	conn := newMemConn()
	lock, err := NewDistributedLock(conn, "order-R100", time.Second)
	require.NoError(t, err)

	require.NoError(t, lock.Lock(t.Context()))
	require.NoError(t, lock.Unlock())

	assert.False(t, conn.has(lockRoot+"/order-R100"))
	assert.True(t, conn.has(lockRoot))
}

func TestUnlockKeepsResourceNodeWithWaiters(t *testing.T) {
	conn := newMemConn()
	first, err := NewDistributedLock(conn, "order-R100", time.Second)
	require.NoError(t, err)
	require.NoError(t, first.Lock(t.Context()))

	// 排队者的临时节点
	waiter, err := conn.CreateProtectedEphemeralSequential(lockRoot+"/order-R100/"+lockPrefix, nil, nil)
	require.NoError(t, err)

	require.NoError(t, first.Unlock())
	assert.True(t, conn.has(lockRoot+"/order-R100"))

	require.NoError(t, conn.Delete(waiter, -1))
}

func TestLockRecreatesDeletedResourceNode(t *testing.T) {
	conn := newMemConn()
	stale, err := NewDistributedLock(conn, "order-R100", time.Second)
	require.NoError(t, err)
	other, err := NewDistributedLock(conn, "order-R100", time.Second)
	require.NoError(t, err)

	// other 的 Unlock 删掉了 stale 创建时确认过的资源节点
	require.NoError(t, other.Lock(t.Context()))
	require.NoError(t, other.Unlock())
	require.False(t, conn.has(lockRoot+"/order-R100"))

	require.NoError(t, stale.Lock(t.Context()))
	require.NoError(t, stale.Unlock())
	assert.False(t, conn.has(lockRoot+"/order-R100"))
}
