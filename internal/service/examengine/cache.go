package examengine

import (
	"sync"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// TTLCache хранит последний загруженный список вопросов ограниченное время.
// Запись идемпотентна: при гонке обновлений побеждает последняя.
type TTLCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	clock    Clock
	items    []entity.Question
	source   string
	loadedAt time.Time
	valid    bool
}

// NewTTLCache создает кеш с заданным временем жизни
func NewTTLCache(ttl time.Duration, clock Clock) *TTLCache {
	if clock == nil {
		clock = SystemClock()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TTLCache{ttl: ttl, clock: clock}
}

// Get возвращает закешированный список, если он еще не устарел
func (c *TTLCache) Get() ([]entity.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || c.clock.Now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.items, true
}

// Set сохраняет список и отметку времени загрузки
func (c *TTLCache) Set(items []entity.Question, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.source = source
	c.loadedAt = c.clock.Now()
	c.valid = true
}

// Invalidate сбрасывает кеш; следующий Get будет промахом
func (c *TTLCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.source = ""
	c.valid = false
}

// CacheState: сведения о содержимом кеша
type CacheState struct {
	Valid    bool      `json:"valid"`
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
	Expires  time.Time `json:"expires_at"`
}

// State возвращает сведения о кеше
func (c *TTLCache) State() CacheState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid := c.valid && c.clock.Now().Sub(c.loadedAt) < c.ttl
	st := CacheState{Valid: valid, Source: c.source, Count: len(c.items)}
	if c.valid {
		st.LoadedAt = c.loadedAt
		st.Expires = c.loadedAt.Add(c.ttl)
	}
	return st
}
