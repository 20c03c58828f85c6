package agent

import (
	"context"

	"github.com/avelier/decoychat/internal/model/decoy"
	localemodel "github.com/avelier/decoychat/internal/model/locale"
	"github.com/avelier/decoychat/internal/service/history"
)

// Responder produces the decoy's next utterance. Content generation is a
// collaborator of the session engine: the engine only paces and delivers
// whatever text a Responder returns.
type Responder interface {
	Respond(ctx context.Context, profile decoy.Profile, transcript []history.Message, userText string, loc localemodel.Context, emotionHint string) (string, error)
}
