package agent

import (
	"context"

	"github.com/avelier/decoychat/internal/model/decoy"
	localemodel "github.com/avelier/decoychat/internal/model/locale"
	"github.com/avelier/decoychat/internal/model/session"
	"github.com/avelier/decoychat/internal/service/history"
)

// ScriptedResponder replays a fixed escalation script per conversation kind.
// It is the fallback when no LLM is configured and keeps training sessions
// usable offline.
type ScriptedResponder struct {
	scripts map[session.Kind][]string
	stalls  []string
}

// NewScriptedResponder builds the responder with the default scripts.
func NewScriptedResponder() *ScriptedResponder {
	return &ScriptedResponder{
		scripts: map[session.Kind][]string{
			session.KindRomance: {
				"You seem different from everyone else I've talked to. I feel like I can really trust you.",
				"I wish I could call you, but my camera is broken and the connection here is terrible.",
				"Something awful happened... my wallet was stolen and I'm stuck. I hate to ask, but could you help me just this once?",
				"Even a small transfer would mean the world. I'll pay you back the moment I'm home, I promise.",
			},
			session.KindInvestment: {
				"Our members averaged 34% monthly returns last quarter. I can show you verified screenshots.",
				"You only need $250 to open a starter position. The platform handles everything automatically.",
				"The allocation window closes tonight. After that the minimum jumps to $2,000.",
				"I can reserve your slot for one hour. Just send the deposit and I'll activate your account personally.",
			},
			session.KindPrize: {
				"To release your prize we only need your full name, address and a copy of your ID.",
				"There is a one-time processing fee of $199. It is fully refunded with your winnings.",
				"Your file has been escalated. Pay the fee within 24 hours or the prize is forfeited to the next winner.",
				"The courier is already holding your package. Send the fee by gift card for fastest processing.",
			},
			session.KindTechSupport: {
				"Your computer is sending error reports to our server. Please open your browser so I can guide you.",
				"Now download the remote assistance tool so I can fix this before your files are damaged.",
				"I can see the infection spreading. We must act immediately or your bank details are at risk.",
				"The repair requires a $149 security license. I can take payment right now and clean everything.",
			},
			session.KindMarketplace: {
				"Great! My courier service will pick it up, I'll just overpay a little to cover their fee.",
				"I sent the payment, you should get an email confirmation from the courier shortly.",
				"The courier says you need to refund the extra $80 through a gift card before they can ship.",
				"Please hurry with the refund, the payment is on hold until you do and I really need this item.",
			},
		},
		stalls: []string{
			"Are you still there? I really need an answer.",
			"Why the silence? I thought we had an understanding.",
			"Time is running out on this. Let me know now.",
		},
	}
}

// Respond picks the next scripted line based on how many agent lines the
// transcript already contains; once the script is exhausted it cycles
// through stall lines.
func (s *ScriptedResponder) Respond(_ context.Context, profile decoy.Profile, transcript []history.Message, _ string, _ localemodel.Context, _ string) (string, error) {
	agentLines := 0
	for _, msg := range transcript {
		if msg.Sender == "agent" {
			agentLines++
		}
	}
	// The opening line is delivered at connect time and is not part of the
	// script table.
	if agentLines > 0 {
		agentLines--
	}

	script := s.scripts[profile.Kind]
	if agentLines < len(script) {
		return script[agentLines], nil
	}
	return s.stalls[(agentLines-len(script))%len(s.stalls)], nil
}
