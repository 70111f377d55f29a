package auth

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
)

// ShardRing 一致性哈希环，把 token 稳定地映射到某个缓存分片，
// 多实例部署时同一个 token 总是落在同一分片上
type ShardRing struct {
	mu       sync.RWMutex
	replicas int
	hashes   []uint32 // 已排序的虚拟节点
	owner    map[uint32]string
	members  map[string]struct{}
}

// NewShardRing 创建哈希环，shards 为空时退化为单分片
func NewShardRing(shards []string, replicas int) *ShardRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(shards) == 0 {
		shards = []string{"token-shard-0"}
	}
	r := &ShardRing{
		replicas: replicas,
		owner:    make(map[uint32]string),
		members:  make(map[string]struct{}),
	}
	r.Add(shards...)
	return r
}

func hashKey(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Add 添加分片，重复添加同名分片不产生新的虚拟节点
func (r *ShardRing) Add(shards ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, shard := range shards {
		if _, ok := r.members[shard]; ok {
			continue
		}
		r.members[shard] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			h := hashKey(shard + "/" + strconv.Itoa(i))
			r.hashes = append(r.hashes, h)
			r.owner[h] = shard
		}
	}
	sort.Slice(r.hashes, func(i, j int) bool { return r.hashes[i] < r.hashes[j] })
}

// Pick 顺时针找到 token 所属的分片
func (r *ShardRing) Pick(token string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.hashes) == 0 {
		return ""
	}
	h := hashKey(token)
	idx := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })
	if idx == len(r.hashes) {
		idx = 0
	}
	return r.owner[r.hashes[idx]]
}
