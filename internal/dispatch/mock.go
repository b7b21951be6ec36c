package dispatch

import (
	"context"
	"fmt"
	"sync"
)

// MockDispatcher 把投递记在内存里，供测试和本地联调使用
type MockDispatcher struct {
	mu    sync.Mutex
	Calls []Payload

	// FailNext 只让下一次投递失败，之后自动复位
	FailNext bool
	// FailAll 每次投递都失败
	FailAll bool
}

func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

func (m *MockDispatcher) Dispatch(ctx context.Context, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAll {
		return fmt.Errorf("mock dispatch failure for shift %d %s", payload.ShiftID, payload.AlertType)
	}
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock dispatch failure for shift %d %s", payload.ShiftID, payload.AlertType)
	}

	m.Calls = append(m.Calls, payload)
	return nil
}

// CallCount 已成功投递的次数
func (m *MockDispatcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
