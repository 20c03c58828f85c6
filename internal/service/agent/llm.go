package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/avelier/decoychat/internal/config"
	"github.com/avelier/decoychat/internal/model/decoy"
	localemodel "github.com/avelier/decoychat/internal/model/locale"
	"github.com/avelier/decoychat/internal/service/history"
)

// historyLimit bounds how much transcript is replayed into the model.
const historyLimit = 10

// LLMResponder generates decoy replies with a chat model behind an eino
// chain. Constructed only when Ark credentials are configured.
type LLMResponder struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMResponder compiles the prompt + model chain from configuration.
func NewLLMResponder(ctx context.Context, cfg config.AIConfig) (*LLMResponder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &LLMResponder{chain: runnable}, nil
}

// Respond runs the chain over the decoy profile, locale hints and recent
// transcript.
func (r *LLMResponder) Respond(ctx context.Context, profile decoy.Profile, transcript []history.Message, userText string, loc localemodel.Context, emotionHint string) (string, error) {
	input := map[string]any{
		"system":  BuildSystemPrompt(profile, loc, emotionHint),
		"history": buildHistoryMessages(transcript),
		"query":   userText,
	}

	response, err := r.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run decoy chain: %w", err)
	}

	log.Printf("[agent] generated reply decoy=%s length=%d", profile.ID, len(response.Content))
	return response.Content, nil
}

func buildHistoryMessages(transcript []history.Message) []*schema.Message {
	if len(transcript) == 0 {
		return nil
	}

	start := 0
	if len(transcript) > historyLimit {
		start = len(transcript) - historyLimit
	}

	msgs := make([]*schema.Message, 0, len(transcript)-start)
	for _, msg := range transcript[start:] {
		switch msg.Sender {
		case "user":
			msgs = append(msgs, schema.UserMessage(msg.Content))
		case "agent":
			msgs = append(msgs, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return msgs
}
