package translate

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
)

type scriptedBackend struct {
	mu       sync.Mutex
	failures []error
	requests []Request
}

func (b *scriptedBackend) TranslateBatch(_ context.Context, req Request) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if len(b.failures) > 0 {
		err := b.failures[0]
		b.failures = b.failures[1:]
		return nil, err
	}
	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = strings.ToUpper(text) + "@" + req.TargetLang
	}
	return out, nil
}

func newTestAdapter(t *testing.T, backend Backend) *Adapter {
	t.Helper()
	langs, err := faq.NewLanguages("en", []string{"en", "fr", "de"})
	require.NoError(t, err)
	retry := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	return NewAdapter(backend, langs, retry, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAdapterTranslatesPlainText(t *testing.T) {
	backend := &scriptedBackend{}
	adapter := newTestAdapter(t, backend)

	got, err := adapter.Translate(context.Background(), "hello", "fr")
	require.NoError(t, err)
	require.Equal(t, "HELLO@fr", got)
	require.Len(t, backend.requests, 1)
	require.Equal(t, "French", backend.requests[0].TargetName)
	require.Equal(t, "English", backend.requests[0].SourceName)
}

func TestAdapterRejectsUnsupportedTarget(t *testing.T) {
	backend := &scriptedBackend{}
	adapter := newTestAdapter(t, backend)

	for _, lang := range []string{"xx", "es", "FR"} {
		_, err := adapter.Translate(context.Background(), "hello", lang)
		require.True(t, apperrors.IsCode(err, apperrors.CodeProvider), lang)
	}
	require.Empty(t, backend.requests)
}

func TestAdapterRetriesRetryableFailures(t *testing.T) {
	backend := &scriptedBackend{failures: []error{
		&ProviderError{Message: "rate limited", Retryable: true},
		&ProviderError{Message: "bad gateway", Retryable: true},
	}}
	adapter := newTestAdapter(t, backend)

	got, err := adapter.Translate(context.Background(), "hello", "de")
	require.NoError(t, err)
	require.Equal(t, "HELLO@de", got)
	require.Len(t, backend.requests, 3)
}

func TestAdapterStopsOnPermanentFailure(t *testing.T) {
	backend := &scriptedBackend{failures: []error{&ProviderError{Message: "invalid api key"}}}
	adapter := newTestAdapter(t, backend)

	_, err := adapter.Translate(context.Background(), "hello", "de")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeProvider))
	require.Len(t, backend.requests, 1)
}

func TestAdapterGivesUpAfterMaxRetries(t *testing.T) {
	retryable := &ProviderError{Message: "unavailable", Retryable: true}
	backend := &scriptedBackend{failures: []error{retryable, retryable, retryable, retryable}}
	adapter := newTestAdapter(t, backend)

	_, err := adapter.Translate(context.Background(), "hello", "de")
	require.True(t, apperrors.IsCode(err, apperrors.CodeProvider))
	require.Len(t, backend.requests, 3)
}

func TestAdapterDisabledBackend(t *testing.T) {
	adapter := newTestAdapter(t, DisabledBackend{})

	_, err := adapter.Translate(context.Background(), "hello", "fr")
	require.True(t, apperrors.IsCode(err, apperrors.CodeProvider))
}

func TestAdapterKeepsMarkup(t *testing.T) {
	backend := &scriptedBackend{}
	adapter := newTestAdapter(t, backend)

	src := `<p>Reset your <strong>password</strong> here.</p><pre>make reset</pre>`
	got, err := adapter.Translate(context.Background(), src, "fr")
	require.NoError(t, err)
	require.Equal(t, `<p>RESET YOUR@fr <strong>PASSWORD@fr</strong> HERE.@fr</p><pre>make reset</pre>`, got)
	require.Equal(t, []string{"Reset your", "password", "here."}, backend.requests[0].Texts)
}

type echoBackend struct {
	requests []Request
}

func (b *echoBackend) TranslateBatch(_ context.Context, req Request) ([]string, error) {
	b.requests = append(b.requests, req)
	return append([]string(nil), req.Texts...), nil
}

func TestAdapterSendsAngleBracketsInPlainTextVerbatim(t *testing.T) {
	cases := []string{
		"Is 2 < 3 and 5 > 4? Use a->b & c",
		"AT&T <-> Verizon",
	}
	for _, src := range cases {
		backend := &echoBackend{}
		adapter := newTestAdapter(t, backend)

		got, err := adapter.Translate(context.Background(), src, "fr")
		require.NoError(t, err, src)
		require.Equal(t, src, got)
		require.Len(t, backend.requests, 1)
		require.Equal(t, []string{src}, backend.requests[0].Texts)
	}
}
