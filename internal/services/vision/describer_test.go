package vision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/models"
)

type fakeProvider struct {
	text  string
	err   error
	calls []*imageRequest
}

func (f *fakeProvider) generate(ctx context.Context, req *imageRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.text, f.err
}

func (f *fakeProvider) name() string { return "fake/model" }
func (f *fakeProvider) close() error { return nil }

func TestDescriber_ReturnsTextVerbatim(t *testing.T) {
	p := &fakeProvider{text: "  A cat mid-sneeze. Cue the kazoo.\n"}
	d := newDescriber(p, nil, time.Second, "", arbor.NewLogger())

	text, err := d.Describe(context.Background(), EncodeDataURL("image/png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "  A cat mid-sneeze. Cue the kazoo.\n", text)

	require.Len(t, p.calls, 1)
	assert.Equal(t, "image/png", p.calls[0].MimeType)
	assert.Equal(t, pngHeader, p.calls[0].Data)
	assert.Equal(t, DefaultPrompt, p.calls[0].Prompt)
}

func TestDescriber_CustomPrompt(t *testing.T) {
	p := &fakeProvider{text: "ok"}
	d := newDescriber(p, nil, 0, "describe the noise", arbor.NewLogger())

	_, err := d.Describe(context.Background(), EncodeDataURL("image/png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "describe the noise", p.calls[0].Prompt)
}

func TestDescriber_EmptyResponse(t *testing.T) {
	p := &fakeProvider{text: "   "}
	d := newDescriber(p, nil, time.Second, "", arbor.NewLogger())

	_, err := d.Describe(context.Background(), EncodeDataURL("image/png", pngHeader))
	assert.ErrorIs(t, err, ErrNoDescription)
}

func TestDescriber_ProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("quota exceeded")}
	d := newDescriber(p, nil, time.Second, "", arbor.NewLogger())

	_, err := d.Describe(context.Background(), EncodeDataURL("image/png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, "failed to analyze image: quota exceeded", err.Error())
	assert.Len(t, p.calls, 1)
}

func TestDescriber_InvalidDataURLSkipsProvider(t *testing.T) {
	p := &fakeProvider{text: "never"}
	d := newDescriber(p, nil, time.Second, "", arbor.NewLogger())

	_, err := d.Describe(context.Background(), "not a data url")
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.Empty(t, p.calls)
}

func TestPacing(t *testing.T) {
	timeout, limiter, err := pacing("30s", "4s")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
	require.NotNil(t, limiter)
	assert.InDelta(t, 0.25, float64(limiter.Limit()), 1e-9)

	_, limiter, err = pacing("", "")
	require.NoError(t, err)
	assert.Nil(t, limiter)

	_, _, err = pacing("soon", "")
	assert.Error(t, err)
}

// slowProvider answers after delay and is safe for concurrent use
type slowProvider struct {
	delay time.Duration
}

func (p *slowProvider) generate(ctx context.Context, req *imageRequest) (string, error) {
	select {
	case <-time.After(p.delay):
		return "rain on a tin roof", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *slowProvider) name() string { return "slow/model" }
func (p *slowProvider) close() error { return nil }

func TestDefaultConfigDoesNotPace(t *testing.T) {
	config := common.NewDefaultConfig()

	for _, rateLimit := range []string{config.Gemini.RateLimit, config.Claude.RateLimit} {
		_, limiter, err := pacing(config.Gemini.Timeout, rateLimit)
		require.NoError(t, err)
		assert.Nil(t, limiter)
	}
}

func TestDescriber_ConcurrentRequestsIndependent(t *testing.T) {
	config := common.NewDefaultConfig()
	timeout, limiter, err := pacing(config.Gemini.Timeout, config.Gemini.RateLimit)
	require.NoError(t, err)

	d := newDescriber(&slowProvider{delay: 200 * time.Millisecond}, limiter, timeout, "", arbor.NewLogger())
	dataURL := EncodeDataURL("image/png", []byte("png"))

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Describe(context.Background(), dataURL)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 550*time.Millisecond)
}
