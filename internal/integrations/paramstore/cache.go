package paramstore

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cached memoizes successful lookups of another Getter. Concurrent lookups of
// the same name share one upstream call; failures are not cached.
type Cached struct {
	next  Getter
	group singleflight.Group

	mu     sync.RWMutex
	values map[string]string
}

func NewCached(next Getter) (*Cached, error) {
	if next == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	return &Cached{next: next, values: make(map[string]string)}, nil
}

func (c *Cached) GetParameter(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := c.group.Do(name, func() (any, error) {
		v, err := c.next.GetParameter(ctx, name)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.values[name] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}
