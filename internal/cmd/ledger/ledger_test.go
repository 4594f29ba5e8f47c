package ledger

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

func TestUserFacingLocalizesDomainErrors(t *testing.T) {
	err := userFacing(apperrors.New(apperrors.CodeLevelNotActive, "level 3 is deactivated"), "pt-BR")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Este nível não está disponível no momento.") {
		t.Fatalf("expected localized message, got %q", err)
	}
	if !strings.Contains(err.Error(), "level 3 is deactivated") {
		t.Fatalf("expected internal message retained, got %q", err)
	}
}

func TestUserFacingPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("database is locked")
	if err := userFacing(plain, "en-US"); !errors.Is(err, plain) {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if err := userFacing(nil, "en-US"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
