package decoy

import (
	"testing"

	"github.com/avelier/decoychat/internal/model/session"
)

func TestSeedCoversEveryKind(t *testing.T) {
	store := NewMemoryStore(Seed())

	for _, kind := range session.Kinds() {
		profile, ok := store.FindByKind(kind)
		if !ok {
			t.Fatalf("no decoy seeded for %s", kind)
		}
		if profile.OpeningLine == "" {
			t.Fatalf("decoy %s has no opening line", profile.ID)
		}
		if profile.TypingPersonality == "" {
			t.Fatalf("decoy %s has no typing personality", profile.ID)
		}
	}
}

func TestFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	profile, ok := store.FindByID("techdesk-raj")
	if !ok {
		t.Fatal("techdesk-raj not found")
	}
	if profile.Kind != session.KindTechSupport {
		t.Fatalf("kind = %s, want %s", profile.Kind, session.KindTechSupport)
	}

	if _, ok := store.FindByID("nobody"); ok {
		t.Fatal("unexpected match for unknown id")
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())

	listed := store.List()
	if len(listed) != len(Seed()) {
		t.Fatalf("List returned %d profiles, want %d", len(listed), len(Seed()))
	}

	listed[0].Name = "mutated"
	again := store.List()
	if again[0].Name == "mutated" {
		t.Fatal("List leaked internal state")
	}
}
