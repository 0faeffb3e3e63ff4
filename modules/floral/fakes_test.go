package floral

import (
	"context"
	"fmt"
	"sync"
	"time"

	"floral-studio-server/modules/common/gemini"
)

// scriptedGenerator 는 호출 순서대로 errs 를 돌려주고, nil 이면 성공합니다.
type scriptedGenerator struct {
	mu      sync.Mutex
	errs    []error
	prompts []string
}

func (g *scriptedGenerator) GenerateImage(ctx context.Context, ref gemini.Image, prompt string) (*gemini.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	call := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if call < len(g.errs) && g.errs[call] != nil {
		return nil, g.errs[call]
	}
	return &gemini.Image{Data: []byte(fmt.Sprintf("img-%d", call)), MimeType: "image/png"}, nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func testOrchestrator(rec *recordingSleeper) *Orchestrator {
	return &Orchestrator{
		Policy:         gemini.DefaultRetryPolicy(),
		InterCallDelay: 2 * time.Second,
		Sleep:          rec.Sleep,
	}
}

func factoryFor(gen gemini.ImageGenerator) gemini.ClientFactory {
	return func(ctx context.Context) (gemini.ImageGenerator, error) {
		return gen, nil
	}
}
