package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	name       string
	configured bool
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) IsConfigured() bool   { return f.configured }
func (f *fakeProvider) DefaultModel() string { return f.name + "-model" }

func (f *fakeProvider) Complete(ctx context.Context, messages []Message, opts *Options) (*Completion, error) {
	return &Completion{Content: "ok", Model: f.DefaultModel(), Provider: f.name}, nil
}

func TestRegistryFirstConfiguredWins(t *testing.T) {
	first := &fakeProvider{name: "first"}
	second := &fakeProvider{name: "second", configured: true}
	third := &fakeProvider{name: "third", configured: true}
	registry := NewRegistry(first, second, third)

	active, err := registry.Active()
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active.Name() != "second" {
		t.Errorf("active = %s, want second (first configured in priority order)", active.Name())
	}
}

func TestRegistryCachesSelection(t *testing.T) {
	provider := &fakeProvider{name: "only", configured: true}
	registry := NewRegistry(provider)

	first, err := registry.Active()
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}

	// Even if credentials disappear later, the selection is process-lifetime.
	provider.configured = false
	second, err := registry.Active()
	if err != nil {
		t.Fatalf("Active() second call error = %v", err)
	}
	if first != second {
		t.Error("Active() should return the cached instance")
	}
}

func TestRegistryNoneConfigured(t *testing.T) {
	registry := NewRegistry(&fakeProvider{name: "a"}, &fakeProvider{name: "b"})

	_, err := registry.Active()
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
