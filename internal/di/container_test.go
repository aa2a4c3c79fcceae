package di

import (
	"testing"

	"github.com/mailsift/mailsift/internal/core"
)

func TestContainerStartsWithoutAICredentials(t *testing.T) {
	// Default config enables the AI engine but carries no API key. The
	// container must still resolve: classification degrades to rules only
	// instead of refusing to start.
	container, err := BuildContainer()
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}

	err = container.Invoke(func(ai core.AIClient, service *core.TriageService) {
		if ai != nil {
			t.Error("expected nil AI client when no credentials are configured")
		}
		if service == nil {
			t.Error("triage service not built")
		}
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
}
