package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected ok, got %s", report.Status)
	}
	if report.Checks["store"] != CheckOK || report.Checks["embedding"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_EmbeddingDownDegrades(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("provider down")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected degraded, got %s", report.Status)
	}
}

func TestCheck_StoreDownIsFatal(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("store down")}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Unhealthy {
		t.Errorf("expected error, got %s", report.Status)
	}
}

func TestCheck_NilEmbedding(t *testing.T) {
	svc := New(&mockPinger{}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected ok, got %s", report.Status)
	}
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when checker is nil")
	}
}
