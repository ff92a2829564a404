package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el fallback en memoria cuando Redis no está configurado.
// Ventana fija por clave; suficiente para una sola instancia.
type MemoryLimiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	limit  int
	window time.Duration
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		limit:  limit,
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 1
	if v, ok := l.c.Get(key); ok {
		n = v.(int) + 1
		l.c.Set(key, n, gocache.DefaultExpiration)
	} else {
		l.c.Set(key, 1, l.window)
	}
	return n <= l.limit, nil
}
