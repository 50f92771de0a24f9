package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shop-support-agent/internal/domain"
)

type fakeProvider struct {
	text     string
	err      error
	panicVal any
	block    bool
	calls    int
	received []domain.ChatMessage
}

func (f *fakeProvider) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	f.calls++
	f.received = messages
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	if f.block {
		<-ctx.Done()
		return "", NetworkError("fake", ctx.Err())
	}
	return f.text, f.err
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestNew_NilProvider(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGenerate_ReturnsTextUnmodified(t *testing.T) {
	p := &fakeProvider{text: "  Your order ORD123 has shipped.\n"}
	g, err := New(p)
	require.NoError(t, err)

	msgs := []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}
	out := g.Generate(context.Background(), msgs)
	require.Equal(t, "  Your order ORD123 has shipped.\n", out)
	require.Equal(t, msgs, p.received)
	require.Equal(t, 1, p.calls)
}

func TestGenerate_FallbackOnEveryErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{name: "network", err: NetworkError("fake", errors.New("connection refused")), kind: KindNetwork},
		{name: "service", err: ServiceError("fake", http.StatusServiceUnavailable, errors.New("overloaded")), kind: KindService},
		{name: "malformed", err: MalformedResponseError("fake", errors.New("no candidates")), kind: KindMalformedResponse},
		{name: "credential", err: CredentialError("fake", errors.New("api key is empty")), kind: KindCredential},
		{name: "untyped", err: errors.New("boom"), kind: KindUnknown},
		{name: "wrapped", err: fmt.Errorf("outer: %w", ServiceError("fake", 429, nil)), kind: KindService},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)
			p := &fakeProvider{text: "partial", err: tc.err}
			g, err := New(p)
			require.NoError(t, err)

			out := g.Generate(context.Background(), nil)
			require.Equal(t, FallbackText, out)
			require.Equal(t, 1, p.calls, "generation must never be retried")
			require.Contains(t, logs.String(), "kind="+string(tc.kind))
			require.Equal(t, tc.kind, KindOf(tc.err))
		})
	}
}

func TestGenerate_LogsStatusForServiceErrors(t *testing.T) {
	logs := captureLogs(t)
	g, err := New(&fakeProvider{err: ServiceError("fake", http.StatusBadGateway, errors.New("bad gateway"))})
	require.NoError(t, err)

	require.Equal(t, FallbackText, g.Generate(context.Background(), nil))
	require.Contains(t, logs.String(), "status=502")
	require.Contains(t, logs.String(), "bad gateway")

	logs.Reset()
	wrapped := fmt.Errorf("decorated: %w", ServiceError("fake", http.StatusTooManyRequests, errors.New("quota")))
	g, err = New(&fakeProvider{err: wrapped})
	require.NoError(t, err)
	require.Equal(t, FallbackText, g.Generate(context.Background(), nil))
	require.Contains(t, logs.String(), "status=429")

	logs.Reset()
	g, err = New(&fakeProvider{err: NetworkError("fake", errors.New("connection reset"))})
	require.NoError(t, err)
	require.Equal(t, FallbackText, g.Generate(context.Background(), nil))
	require.NotContains(t, logs.String(), "status=")
}

func TestGenerate_RecoversProviderPanic(t *testing.T) {
	logs := captureLogs(t)
	g, err := New(&fakeProvider{panicVal: "nil map"})
	require.NoError(t, err)

	require.Equal(t, FallbackText, g.Generate(context.Background(), nil))
	require.Contains(t, logs.String(), "provider panic")
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	captureLogs(t)
	g, err := New(&fakeProvider{block: true}, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	require.Equal(t, FallbackText, g.Generate(context.Background(), nil))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestError_Message(t *testing.T) {
	err := ServiceError("gemini", 500, errors.New("internal"))
	require.Equal(t, "gemini: service error (status 500): internal", err.Error())
	require.Equal(t, 500, err.HTTPStatusCode())
	require.Equal(t, "openai: credential error", CredentialError("openai", nil).Error())
	require.ErrorIs(t, NetworkError("gemini", context.DeadlineExceeded), context.DeadlineExceeded)
}
