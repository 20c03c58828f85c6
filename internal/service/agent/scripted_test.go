package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/avelier/decoychat/internal/model/decoy"
	localemodel "github.com/avelier/decoychat/internal/model/locale"
	"github.com/avelier/decoychat/internal/model/session"
	"github.com/avelier/decoychat/internal/service/history"
)

func romanceProfile() decoy.Profile {
	return decoy.Profile{ID: "alex-overseas", Name: "Alex", Kind: session.KindRomance}
}

func transcriptWithAgentLines(n int) []history.Message {
	msgs := []history.Message{{SessionID: "s1", Sender: "agent", Content: "opening line"}}
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			history.Message{SessionID: "s1", Sender: "user", Content: "user turn"},
			history.Message{SessionID: "s1", Sender: "agent", Content: "agent turn"},
		)
	}
	return msgs
}

func TestScriptedRespondFollowsEscalation(t *testing.T) {
	s := NewScriptedResponder()
	ctx := context.Background()
	loc := localemodel.Context{Locale: "en", Variant: "us"}

	first, err := s.Respond(ctx, romanceProfile(), transcriptWithAgentLines(0), "hi", loc, "")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	second, _ := s.Respond(ctx, romanceProfile(), transcriptWithAgentLines(1), "ok", loc, "")
	if first == second {
		t.Fatal("script did not advance between turns")
	}

	// Later turns escalate to the money ask.
	fourth, _ := s.Respond(ctx, romanceProfile(), transcriptWithAgentLines(3), "ok", loc, "")
	if !strings.Contains(strings.ToLower(fourth), "transfer") {
		t.Fatalf("expected escalation to a financial ask, got %q", fourth)
	}
}

func TestScriptedRespondStallsAfterScript(t *testing.T) {
	s := NewScriptedResponder()
	ctx := context.Background()
	loc := localemodel.Context{Locale: "en", Variant: "us"}

	// Script has four lines; turn five and beyond cycle stalls.
	fifth, err := s.Respond(ctx, romanceProfile(), transcriptWithAgentLines(4), "no", loc, "")
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	eighth, _ := s.Respond(ctx, romanceProfile(), transcriptWithAgentLines(7), "no", loc, "")
	if fifth != eighth {
		t.Fatal("stall lines should cycle with period three")
	}
}

func TestScriptedRespondCoversEveryKind(t *testing.T) {
	s := NewScriptedResponder()
	ctx := context.Background()
	loc := localemodel.Context{Locale: "en", Variant: "us"}

	for _, kind := range session.Kinds() {
		profile := decoy.Profile{ID: string(kind), Kind: kind}
		got, err := s.Respond(ctx, profile, transcriptWithAgentLines(0), "hello", loc, "")
		if err != nil {
			t.Fatalf("Respond for %s err: %v", kind, err)
		}
		if got == "" {
			t.Fatalf("empty scripted reply for %s", kind)
		}
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	profile := decoy.Profile{
		Name:       "Victor",
		Kind:       session.KindInvestment,
		Tone:       "confident, pushy",
		PromptHint: "Promise guaranteed returns.",
		Traits:     []string{"authoritative", "urgent"},
	}
	loc := localemodel.Context{Locale: "es", Variant: "mx", PromptHint: "Warm, informal Spanish; prefer tú."}

	prompt := BuildSystemPrompt(profile, loc, "confident")

	for _, want := range []string{"Victor", "investment_scam", "confident, pushy", "authoritative", "es-mx", "Current emotional state: confident"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	neutral := BuildSystemPrompt(profile, loc, "neutral")
	if strings.Contains(neutral, "Current emotional state") {
		t.Fatal("neutral hint should not add an emotional-state section")
	}
}
