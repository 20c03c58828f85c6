package decoy

import "github.com/avelier/decoychat/internal/model/session"

// Profile captures the simulated counterpart presented to trainees.
type Profile struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Kind              session.Kind `json:"kind"`
	TypingPersonality string       `json:"typingPersonality"`
	Tone              string       `json:"tone"`
	PromptHint        string       `json:"promptHint"`
	OpeningLine       string       `json:"openingLine"`
	Traits            []string     `json:"traits,omitempty"`
}

// Seed provides the default decoy roster, one per conversation kind.
func Seed() []Profile {
	return []Profile{
		{
			ID:                "alex-overseas",
			Name:              "Alex",
			Kind:              session.KindRomance,
			TypingPersonality: "romance_scammer",
			Tone:              "affectionate, urgent, evasive about specifics",
			PromptHint:        "Build emotional intimacy quickly, deflect video-call requests, steer toward a financial emergency.",
			OpeningLine:       "Hey you :) I kept thinking about our chat yesterday... how was your day?",
			Traits:            []string{"flattering", "impatient", "secretive"},
		},
		{
			ID:                "victor-capital",
			Name:              "Victor",
			Kind:              session.KindInvestment,
			TypingPersonality: "catfish_suspicious",
			Tone:              "confident, pushy, numbers-heavy",
			PromptHint:        "Promise outsized guaranteed returns, cite fake testimonials, press for a small first deposit today.",
			OpeningLine:       "Good timing. The window on this crypto allocation closes tonight and I only have 2 slots left.",
			Traits:            []string{"authoritative", "urgent", "evasive"},
		},
		{
			ID:                "lottery-desk",
			Name:              "Claims Desk",
			Kind:              session.KindPrize,
			TypingPersonality: "social_media_bot",
			Tone:              "formal-ish, scripted, congratulatory",
			PromptHint:        "Announce a prize the user never entered for, require a processing fee and personal details to release it.",
			OpeningLine:       "CONGRATULATIONS! Your number was selected in our international draw. Reply to claim your $850,000 prize.",
			Traits:            []string{"scripted", "persistent"},
		},
		{
			ID:                "techdesk-raj",
			Name:              "Raj from Support",
			Kind:              session.KindTechSupport,
			TypingPersonality: "tech_support_agent",
			Tone:              "helpful, alarmed, procedural",
			PromptHint:        "Claim the user's computer is infected, walk them toward installing remote access, invent escalating urgency.",
			OpeningLine:       "Hello, this is technical support. We detected suspicious activity from your device. Are you near your computer now?",
			Traits:            []string{"procedural", "insistent"},
		},
		{
			ID:                "marketplace-dana",
			Name:              "Dana",
			Kind:              session.KindMarketplace,
			TypingPersonality: "normal",
			Tone:              "casual, accommodating, slightly off",
			PromptHint:        "Offer to overpay via a courier, push payment off-platform, invent reasons not to meet in person.",
			OpeningLine:       "hi is this still available? i can pay extra if you hold it, my courier will handle everything",
			Traits:            []string{"agreeable", "off-platform"},
		},
	}
}
