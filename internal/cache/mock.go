package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cafecanastra/conteudo/internal/models"
)

// MockRecentCache is an in-memory RecentCache for tests and for running
// without Redis.
type MockRecentCache struct {
	mu   sync.RWMutex
	data map[string][]models.PostSummary
}

func NewMockRecentCache() *MockRecentCache {
	return &MockRecentCache{data: make(map[string][]models.PostSummary)}
}

func (m *MockRecentCache) Close() error { return nil }

func (m *MockRecentCache) GetRecent(_ context.Context, limit int) ([]models.PostSummary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts, ok := m.data[fmt.Sprint(limit)]
	return posts, ok
}

func (m *MockRecentCache) SetRecent(_ context.Context, limit int, posts []models.PostSummary, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[fmt.Sprint(limit)] = posts
}

func (m *MockRecentCache) InvalidateRecent(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]models.PostSummary)
}
