package h

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const defaultTTL = 1 * time.Hour

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// Wait blocks until buffered writes are visible to Get.
	Wait()
	Close()
}

type cacheImpl struct {
	internal *ristretto.Cache[string, any]
}

func NewCache() (Cache, error) {
	internal, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &cacheImpl{
		internal: internal,
	}, nil
}

func (c *cacheImpl) Get(key string) (any, bool) {
	return c.internal.Get(key)
}

func (c *cacheImpl) Set(key string, value any) {
	c.internal.SetWithTTL(key, value, 1, defaultTTL)
}

func (c *cacheImpl) Wait() {
	c.internal.Wait()
}

func (c *cacheImpl) Close() {
	c.internal.Close()
}
