package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8090"`
	Locale  string `env:"CMD_TEST_LOCALE" envDefault:"en-US"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("TRAITOROPS_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("TRAITOROPS_CMD_TEST_LOCALE", "pt-BR")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Address, "address", cfgRef.Address, "address")
	fs.StringVar(&cfgRef.Locale, "locale", cfgRef.Locale, "locale")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Address != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfgRef.Address)
	}
	if cfgRef.Locale != "pt-BR" {
		t.Fatalf("expected env locale, got %q", cfgRef.Locale)
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if err := ParseArgs(flag.NewFlagSet("defaults", flag.ContinueOnError), nil); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if cfgRef.Address != "127.0.0.1:8090" {
		t.Fatalf("address = %q, want default", cfgRef.Address)
	}
	if cfgRef.Locale != "en-US" {
		t.Fatalf("locale = %q, want en-US", cfgRef.Locale)
	}
}

func TestRunWithTelemetryPassesContext(t *testing.T) {
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "")
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "session")

	err := RunWithTelemetry(ctx, ServiceTraitor, func(got context.Context) error {
		if got.Value(key{}) != "session" {
			return errors.New("context not propagated")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	var cfg *testConfig
	if err := ParseConfig(cfg); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceTraitor, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("TRAITOROPS_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceTraitor, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("run error = %v, want %v", err, want)
	}
}
