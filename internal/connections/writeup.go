package connections

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// Length caps for model-written text.
const (
	maxReasonRunes   = 600
	maxOutreachRunes = 1200
)

// GenerateWriteups fills the connection reason and outreach message of each
// connection. A failed item keeps its previous values; the rest continue.
// Programs never get an outreach message.
func (f *Finder) GenerateWriteups(ctx context.Context, goalTitle string, conns []Connection) []Connection {
	out := make([]Connection, len(conns))
	copy(out, conns)

	for i := range out {
		c := out[i]
		user := fmt.Sprintf(writeupUserPrompt, goalTitle, mustJSON(c))
		w, err := completeJSON[writeup](ctx, f.llm, stepWriteup, writeupSystemPrompt, user)
		if err != nil {
			slog.Warn("writeup failed", slog.String("name", c.Name()), slog.Any("error", err))
			continue
		}

		c.AIConnectionReason = engine.TruncateAtWord(engine.CleanHTML(w.ConnectionReason), maxReasonRunes)
		c.AIOutreachMessage = nil
		if c.Type == TypePerson && w.OutreachMessage != nil {
			if msg := engine.TruncateAtWord(engine.CleanHTML(*w.OutreachMessage), maxOutreachRunes); msg != "" {
				c.AIOutreachMessage = &msg
			}
		}
		out[i] = c
	}
	return out
}
