package preview

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelier/decoychat/internal/service/typing"
	"github.com/avelier/decoychat/pkg/utils"
)

// Handler streams a typing-pacing preview over Server-Sent Events so clients
// can tune personalities without opening a WebSocket session.
type Handler struct {
	typing *typing.Engine
}

// New wires the preview handler.
func New(engine *typing.Engine) *Handler {
	return &Handler{typing: engine}
}

// RegisterRoutes mounts the preview endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/preview", h.handlePreview)
}

type chunkEvent struct {
	Chunk    string  `json:"chunk"`
	Text     string  `json:"text"`
	Delay    float64 `json:"delay"`
	Final    bool    `json:"finished"`
	Position int     `json:"position"`
}

// handlePreview replays the given text chunk by chunk at the delays the
// engine would use for a live session.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	q := r.URL.Query()
	text := q.Get("text")
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text query parameter is required")
		return
	}
	personality := q.Get("personality")
	strategy := typing.ChunkStrategy(q.Get("strategy"))
	switch strategy {
	case typing.ChunkBySentence, typing.ChunkByWord, typing.ChunkByCharacter:
	case "":
		strategy = typing.ChunkBySentence
	default:
		utils.RespondError(w, http.StatusBadRequest, "unknown chunk strategy: "+string(strategy))
		return
	}

	utils.SetupSSEHeaders(w)

	total := h.typing.ComputeDelay(text, personality, q.Get("emotion"))
	chunks := h.typing.ComputeChunkedDelays(text, personality, strategy)

	utils.SendSSEEvent(w, flusher, "start", map[string]any{
		"totalDelay": total,
		"chunks":     len(chunks),
	})

	position := 0
	err := h.typing.StreamChunks(r.Context(), chunks, strategy, func(ev typing.Event) error {
		utils.SendSSEEvent(w, flusher, "chunk", chunkEvent{
			Chunk:    ev.Chunk,
			Text:     ev.Text,
			Delay:    chunks[position].Delay,
			Final:    ev.Final,
			Position: position,
		})
		position++
		return nil
	})
	if err != nil {
		log.Printf("[preview] stream aborted: %v", err)
		return
	}

	utils.SendSSEEvent(w, flusher, "done", map[string]any{"totalDelay": total})
}
