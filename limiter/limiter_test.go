package limiter

import "testing"

func TestWithStrategy(t *testing.T) {
	base := NewManager(nil, &FixedWindowStrategy{})

	derived := base.WithStrategy(&TokenBucketStrategy{})
	if derived == nil {
		t.Fatalf("expected derived manager")
	}
	if derived == base {
		t.Fatalf("derived manager must not mutate the base")
	}
	if _, ok := derived.strategy.(*TokenBucketStrategy); !ok {
		t.Fatalf("expected token bucket strategy, got %T", derived.strategy)
	}
	if _, ok := base.strategy.(*FixedWindowStrategy); !ok {
		t.Fatalf("base strategy must stay fixed window, got %T", base.strategy)
	}
	if derived.rdb != base.rdb {
		t.Fatalf("derived manager must share the redis client")
	}
}

// 限流未配置时管理器是 nil, 派生调用要原样透传。
func TestWithStrategyNilManager(t *testing.T) {
	var m *Manager
	if got := m.WithStrategy(&TokenBucketStrategy{}); got != nil {
		t.Fatalf("nil manager must stay nil, got %v", got)
	}
}
