package briefer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/application/service"
	"github.com/helixml/briefer/domain/icebreaker"
	"github.com/helixml/briefer/domain/transcript"
	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
)

type stubLLM struct{ reply string }

func (s stubLLM) ChatCompletion(context.Context, provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.NewChatCompletionResponse(s.reply, "stop", provider.Usage{}), nil
}

type recordingPublisher struct{ jobs []queue.Job }

func (p *recordingPublisher) Publish(_ context.Context, job queue.Job) (queue.Result, error) {
	p.jobs = append(p.jobs, job)
	return queue.Result{Accepted: true, ProviderStatus: 201}, nil
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := briefer.New(briefer.WithTextProvider(stubLLM{}))
	assert.ErrorIs(t, err, briefer.ErrNoDatabase)
}

func TestNew_RequiresTextProvider(t *testing.T) {
	_, err := briefer.New(briefer.WithSQLite(":memory:"))
	assert.ErrorIs(t, err, briefer.ErrNoTextProvider)
}

func TestNew_RejectsBadCallback(t *testing.T) {
	tests := []struct {
		name string
		opts []briefer.Option
	}{
		{"relative base url", []briefer.Option{briefer.WithCallbackBaseURL("/api"), briefer.WithCallbackSecret("s")}},
		{"missing secret", []briefer.Option{briefer.WithCallbackBaseURL("https://svc.example")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]briefer.Option{
				briefer.WithSQLite(":memory:"),
				briefer.WithTextProvider(stubLLM{}),
				briefer.WithPublisher(&recordingPublisher{}),
			}, tt.opts...)
			_, err := briefer.New(opts...)
			assert.ErrorIs(t, err, briefer.ErrInvalidCallback)
		})
	}
}

func TestClient_InlineProcessing(t *testing.T) {
	client, err := briefer.New(
		briefer.WithSQLite(":memory:"),
		briefer.WithTextProvider(stubLLM{reply: "Pricing discussion summary."}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.False(t, client.QueueEnabled())
	require.NoError(t, client.Ping(context.Background()))

	sub, err := transcript.NewSubmission("Acme", []string{"Ann", "Bo"}, "We discussed pricing.", "2024-01-15")
	require.NoError(t, err)

	out, err := client.Transcripts.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Nil(t, out.Queued)
	assert.Equal(t, "Pricing discussion summary.", out.Record.Summary())

	records, err := client.Transcripts.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestClient_QueuedProcessing(t *testing.T) {
	publisher := &recordingPublisher{}
	client, err := briefer.New(
		briefer.WithSQLite(":memory:"),
		briefer.WithTextProvider(stubLLM{reply: "hi"}),
		briefer.WithPublisher(publisher),
		briefer.WithCallbackBaseURL("https://briefer.example/"),
		briefer.WithCallbackSecret("s3cret"),
		briefer.WithAsyncTranscripts(false),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.True(t, client.QueueEnabled())
	assert.Equal(t, "s3cret", client.CallbackSecret())
	assert.False(t, client.Transcripts.Async())
	assert.True(t, client.Icebreakers.Async())

	sub, err := icebreaker.NewSubmission("Acme", "Founder.", "")
	require.NoError(t, err)

	out, err := client.Icebreakers.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.NotNil(t, out.Queued)

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, "https://briefer.example/api/process-icebreaker", publisher.jobs[0].CallbackURL)
	assert.Equal(t, time.Minute, publisher.jobs[0].Delay)
}

func TestClient_SkipProviderValidation(t *testing.T) {
	client, err := briefer.New(briefer.WithSQLite(":memory:"), briefer.WithSkipProviderValidation())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sub, err := transcript.NewSubmission("", nil, "text", "")
	require.NoError(t, err)

	_, err = client.Transcripts.Process(context.Background(), sub)
	assert.ErrorIs(t, err, service.ErrGeneration)
	assert.True(t, errors.Is(err, briefer.ErrNoTextProvider))
}

func TestClient_CloseTwice(t *testing.T) {
	client, err := briefer.New(briefer.WithSQLite(":memory:"), briefer.WithTextProvider(stubLLM{}))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), briefer.ErrClientClosed)
	assert.ErrorIs(t, client.Ping(context.Background()), briefer.ErrClientClosed)
}

// forwardedSecrets is a queue provider that records the forwarded callback
// secret of every publish.
type forwardedSecrets struct {
	mu      sync.Mutex
	secrets []string
}

func newForwardedSecrets(t *testing.T) (*forwardedSecrets, string) {
	t.Helper()
	f := &forwardedSecrets{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.secrets = append(f.secrets, r.Header.Get(queue.HeaderForwardPrefix+queue.HeaderCallbackSecret))
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"msg_1"}`))
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func TestClient_QueueForwardsWorkerSecret(t *testing.T) {
	tests := []struct {
		name        string
		queueSecret string
		opts        []briefer.Option
	}{
		{"client secret only", "", []briefer.Option{briefer.WithCallbackSecret("s3cret")}},
		{"queue secret only", "s3cret", nil},
		{"both agree", "s3cret", []briefer.Option{briefer.WithCallbackSecret("s3cret")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream, url := newForwardedSecrets(t)
			opts := append([]briefer.Option{
				briefer.WithSQLite(":memory:"),
				briefer.WithTextProvider(stubLLM{}),
				briefer.WithQueue(queue.Config{URL: url, Token: "tok", CallbackSecret: tt.queueSecret}),
				briefer.WithCallbackBaseURL("https://briefer.example"),
			}, tt.opts...)
			client, err := briefer.New(opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })

			sub, err := icebreaker.NewSubmission("Acme", "Founder.", "")
			require.NoError(t, err)
			out, err := client.Icebreakers.Submit(context.Background(), sub)
			require.NoError(t, err)
			require.NotNil(t, out.Queued)

			assert.Equal(t, "s3cret", client.CallbackSecret())
			assert.Equal(t, []string{"s3cret"}, upstream.secrets)
		})
	}
}

func TestNew_RejectsConflictingQueueSecret(t *testing.T) {
	_, err := briefer.New(
		briefer.WithSQLite(":memory:"),
		briefer.WithTextProvider(stubLLM{}),
		briefer.WithQueue(queue.Config{URL: "https://q.example", Token: "tok", CallbackSecret: "one"}),
		briefer.WithCallbackBaseURL("https://briefer.example"),
		briefer.WithCallbackSecret("two"),
	)
	assert.ErrorIs(t, err, briefer.ErrInvalidCallback)
}

func TestClient_ServicesFailAfterClose(t *testing.T) {
	client, err := briefer.New(briefer.WithSQLite(":memory:"), briefer.WithTextProvider(stubLLM{reply: "s"}))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	ctx := context.Background()
	sub, err := transcript.NewSubmission("Acme", nil, "text", "")
	require.NoError(t, err)

	_, err = client.Transcripts.Submit(ctx, sub)
	assert.ErrorIs(t, err, briefer.ErrClientClosed)
	_, err = client.Transcripts.List(ctx)
	assert.ErrorIs(t, err, briefer.ErrClientClosed)
	_, err = client.Icebreakers.List(ctx)
	assert.ErrorIs(t, err, briefer.ErrClientClosed)
	assert.ErrorIs(t, client.Icebreakers.Delete(ctx, 1), briefer.ErrClientClosed)
}
