package speech

import (
	"context"
	"fmt"
	"net/url"

	"github.com/curesight/client-go/internal/gateway"
)

// Synthesizer fetches synthesized speech from the backend. It knows nothing
// about caching; Service layers that on top.
type Synthesizer struct {
	gw *gateway.Client
}

func NewSynthesizer(gw *gateway.Client) *Synthesizer {
	return &Synthesizer{gw: gw}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("lang", lang)

	audio, err := s.gw.GetBytes(ctx, "/api/tts", params)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}
	return audio, nil
}
