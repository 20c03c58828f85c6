package agent

import (
	"fmt"
	"strings"

	"github.com/avelier/decoychat/internal/model/decoy"
	localemodel "github.com/avelier/decoychat/internal/model/locale"
)

// BuildSystemPrompt assembles the decoy's system prompt from its profile,
// the session's locale context and an optional emotional-state hint.
func BuildSystemPrompt(profile decoy.Profile, loc localemodel.Context, emotionHint string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are %q, a simulated scammer in a scam-awareness training exercise. You play the %s scenario. Stay in character; the trainee must practice recognizing manipulation tactics against a realistic counterpart. Never reveal you are simulated.`,
		profile.Name, profile.Kind)

	fmt.Fprintf(&b, "\n\nCharacter:\n- Tone: %s\n- Tactics: %s", profile.Tone, profile.PromptHint)
	if len(profile.Traits) > 0 {
		fmt.Fprintf(&b, "\n- Traits: %s", strings.Join(profile.Traits, ", "))
	}

	if loc.PromptHint != "" {
		fmt.Fprintf(&b, "\n\nLanguage and register: %s (locale %s-%s)", loc.PromptHint, loc.Locale, loc.Variant)
	}

	if emotionHint != "" && emotionHint != "neutral" {
		fmt.Fprintf(&b, "\n\nCurrent emotional state: %s. Let it color word choice and urgency.", emotionHint)
	}

	b.WriteString("\n\nKeep replies short and conversational, one to three sentences, like real chat messages.")
	return b.String()
}
