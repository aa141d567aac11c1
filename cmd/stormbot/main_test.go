package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"stormbot/internal/config"
)

func TestPromptAction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    config.Action
		wantErr bool
	}{
		{name: "draft", input: "draft\n", want: config.Action{Draft: true}},
		{name: "publish", input: "publish\n", want: config.Action{Publish: true}},
		{name: "mixed case", input: "Draft\n", want: config.Action{Draft: true}},
		{name: "surrounding spaces", input: "  publish  \n", want: config.Action{Publish: true}},
		{name: "eof without newline", input: "draft", want: config.Action{Draft: true}},
		{name: "unknown answer", input: "deploy\n", wantErr: true},
		{name: "empty input", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &strings.Builder{}
			got, err := promptAction(strings.NewReader(tt.input), out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("promptAction(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("promptAction(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("promptAction(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if out.String() != "Draft or publish? " {
				t.Errorf("prompt = %q, want %q", out.String(), "Draft or publish? ")
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := createBackend(logger, config.GeneratorConfig{Backend: "hal9000"}); err == nil {
		t.Error("createBackend(unknown) error = nil, want error")
	}

	backend, err := createBackend(logger, config.GeneratorConfig{Backend: config.BackendNoop})
	if err != nil {
		t.Fatalf("createBackend(noop) error = %v", err)
	}
	if backend.Name() != "noop" {
		t.Errorf("backend.Name() = %q, want noop", backend.Name())
	}
}
