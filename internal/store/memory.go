package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend is an in-process document tree with the same path semantics
// as the Realtime Database. It backs every test in this module.
type MemoryBackend struct {
	mu   sync.Mutex
	root map[string]interface{}
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{root: make(map[string]interface{})}
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func (b *MemoryBackend) Get(ctx context.Context, path string) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	node := interface{}(b.root)
	for _, seg := range splitPath(path) {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		node, ok = m[seg]
		if !ok {
			return nil, nil
		}
	}

	raw, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *MemoryBackend) Set(ctx context.Context, path string, value interface{}) error {
	// Round-trip through JSON so stored nodes are plain maps and scalars,
	// matching what the remote store would hand back.
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var node interface{}
	if err := json.Unmarshal(raw, &node); err != nil {
		return err
	}

	segs := splitPath(path)
	if len(segs) == 0 {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		b.mu.Lock()
		b.root = m
		b.mu.Unlock()
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	parent := b.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := parent[seg].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			parent[seg] = child
		}
		parent = child
	}
	parent[segs[len(segs)-1]] = node
	return nil
}

func (b *MemoryBackend) Push(ctx context.Context, path string, value interface{}) (string, error) {
	key := uuid.NewString()
	if err := b.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, path string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		b.mu.Lock()
		b.root = make(map[string]interface{})
		b.mu.Unlock()
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	parent := b.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := parent[seg].(map[string]interface{})
		if !ok {
			return nil
		}
		parent = child
	}
	delete(parent, segs[len(segs)-1])
	return nil
}
