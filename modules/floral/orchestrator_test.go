package floral

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"floral-studio-server/modules/common/gemini"
)

var (
	rateLimited = genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}
	badRequest  = genai.APIError{Code: 400, Message: "Invalid image", Status: "INVALID_ARGUMENT"}
	plan4       = PromptPlan{"p1", "p2", "p3", "p4"}
)

func TestRunAllSucceed(t *testing.T) {
	gen := &scriptedGenerator{}
	rec := &recordingSleeper{}

	result, err := testOrchestrator(rec).Run(context.Background(), gen, ReferenceImage{}, plan4)

	require.NoError(t, err)
	require.Len(t, result.Images, 4)
	for i, img := range result.Images {
		assert.Equal(t, []byte(fmt.Sprintf("img-%d", i)), img.Data)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, gen.prompts)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, rec.delays)
	assert.False(t, result.Partial())
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{rateLimited, rateLimited}}
	rec := &recordingSleeper{}

	result, err := testOrchestrator(rec).Run(context.Background(), gen, ReferenceImage{}, PromptPlan{"only"})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, 3, gen.calls())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, rec.delays)
}

func TestRunPartialWhenLaterPromptExhausted(t *testing.T) {
	// 1번 성공, 2번은 5회 모두 429
	gen := &scriptedGenerator{errs: []error{nil, rateLimited, rateLimited, rateLimited, rateLimited, rateLimited}}
	rec := &recordingSleeper{}

	result, err := testOrchestrator(rec).Run(context.Background(), gen, ReferenceImage{}, plan4)

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, []byte("img-0"), result.Images[0].Data)
	assert.True(t, result.Partial())
	assert.Equal(t, 6, gen.calls(), "p3 and p4 are never attempted")
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		3 * time.Second, 6 * time.Second, 12 * time.Second, 24 * time.Second,
	}, rec.delays)
}

func TestRunFatalFirstErrorPropagates(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{badRequest}}
	rec := &recordingSleeper{}

	result, err := testOrchestrator(rec).Run(context.Background(), gen, ReferenceImage{}, plan4)

	require.Error(t, err)
	assert.True(t, errors.As(err, new(genai.APIError)))
	assert.Empty(t, result.Images)
	assert.Equal(t, 1, gen.calls())
	assert.Empty(t, rec.delays)
}

func TestRunNoImageDataIsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{nil, gemini.ErrNoImageData}}
	rec := &recordingSleeper{}

	result, err := testOrchestrator(rec).Run(context.Background(), gen, ReferenceImage{}, plan4)

	require.NoError(t, err)
	assert.Len(t, result.Images, 1)
	assert.Equal(t, 2, gen.calls())
}

func TestRunReportsProgressInOrder(t *testing.T) {
	gen := &scriptedGenerator{}
	rec := &recordingSleeper{}
	var seen []int

	_, err := testOrchestrator(rec).RunWithProgress(context.Background(), gen, ReferenceImage{}, plan4,
		func(index int, img GeneratedImage) {
			seen = append(seen, index)
		})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestRunCancelledBetweenCalls(t *testing.T) {
	gen := &scriptedGenerator{}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		Policy:         gemini.DefaultRetryPolicy(),
		InterCallDelay: time.Hour,
		Sleep:          gemini.SleepContext,
	}

	var result GenerationResult
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err = o.RunWithProgress(ctx, gen, ReferenceImage{}, plan4, func(int, GeneratedImage) { cancel() })
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
	require.NoError(t, err)
	assert.Len(t, result.Images, 1)
	assert.Equal(t, 1, gen.calls())
}
