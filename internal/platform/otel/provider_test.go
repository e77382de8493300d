package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/traitorops/internal/platform/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "")
	t.Setenv("TRAITOROPS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "traitor-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("TRAITOROPS_OTEL_ENABLED", "FALSE")

	shutdown, err := otel.Setup(context.Background(), "traitor-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address; nothing is exported before shutdown.
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("TRAITOROPS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "traitor-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_RejectsBadSampleRatio(t *testing.T) {
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("TRAITOROPS_OTEL_ENABLED", "")
	t.Setenv("TRAITOROPS_OTEL_SAMPLE_RATIO", "1.5")

	if _, err := otel.Setup(context.Background(), "traitor-test"); err == nil {
		t.Fatal("expected sample ratio error")
	}
}

func TestSettingsActive(t *testing.T) {
	tests := []struct {
		settings otel.Settings
		want     bool
	}{
		{settings: otel.Settings{}, want: false},
		{settings: otel.Settings{Endpoint: "http://collector:4318"}, want: true},
		{settings: otel.Settings{Endpoint: "http://collector:4318", Enabled: "False"}, want: false},
		{settings: otel.Settings{Enabled: "true"}, want: false},
	}
	for _, tc := range tests {
		if got := tc.settings.Active(); got != tc.want {
			t.Fatalf("Active(%+v) = %v, want %v", tc.settings, got, tc.want)
		}
	}
}

func TestTracerStartsSpans(t *testing.T) {
	_, span := otel.Tracer().Start(context.Background(), "objective.start")
	if span == nil {
		t.Fatal("expected span")
	}
	span.End()
}
