package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in           string
		wantHost     string
		wantInsecure bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"collector:4318", "collector:4318", true},
		{"http://collector:4318", "collector:4318", true},
		{"https://otel.example.com/", "otel.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, insecure := parseEndpoint(tt.in)
			if host != tt.wantHost || insecure != tt.wantInsecure {
				t.Errorf("parseEndpoint(%q) = %q, %v, want %q, %v", tt.in, host, insecure, tt.wantHost, tt.wantInsecure)
			}
		})
	}
}

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "cine-test", "", zap.NewNop())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("Init() returned nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}
