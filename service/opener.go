package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"worker-debrief/pkg/genai"
)

// OpenerSentinel is the literal token the model is instructed to return when
// the debrief is not worth surfacing proactively.
const OpenerSentinel = "NO_OPENER"

const openerPrompt = `You surface at most one short conversational opener from a recording debrief.
If the debrief contains something genuinely worth bringing up with the user,
reply with a single short sentence doing so. If nothing is worth saying,
reply with exactly the token ` + OpenerSentinel + ` and nothing else.`

type OpenerService interface {
	// GenerateOpener returns an opener and true, or "" and false for the
	// deliberate no-opener outcome. It never returns an error: a provider
	// failure is treated the same as "nothing worth saying".
	GenerateOpener(ctx context.Context, title, debriefMarkdown string) (string, bool)
}

type openerService struct {
	gen genai.Client
}

func NewOpenerService(gen genai.Client) OpenerService {
	return &openerService{gen: gen}
}

func (s *openerService) GenerateOpener(ctx context.Context, title, debriefMarkdown string) (string, bool) {
	content := fmt.Sprintf("Recording title: %s\n\nDebrief:\n%s", title, debriefMarkdown)

	out, err := s.gen.Generate(ctx, openerPrompt, content)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("opener generation failed, returning no opener")
		return "", false
	}

	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, OpenerSentinel) {
		return "", false
	}
	return out, true
}
