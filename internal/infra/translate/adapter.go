package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
)

const defaultAttemptTimeout = 8 * time.Second

// Adapter implements faq.Translator on top of a Backend.
type Adapter struct {
	backend        Backend
	languages      *faq.Languages
	retry          RetryConfig
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewAdapter wires the adapter. attemptTimeout bounds each backend call.
func NewAdapter(backend Backend, languages *faq.Languages, retry RetryConfig, attemptTimeout time.Duration, logger *slog.Logger) *Adapter {
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		backend:        backend,
		languages:      languages,
		retry:          retry,
		attemptTimeout: attemptTimeout,
		logger:         logger.With("component", "translate.adapter"),
	}
}

// Translate implements faq.Translator. Every failure is a provider_error.
func (a *Adapter) Translate(ctx context.Context, text, targetLang string) (string, error) {
	target, ok := a.languages.Lookup(targetLang)
	if !ok || target.Code != targetLang {
		return "", apperrors.Wrap(apperrors.CodeProvider, fmt.Sprintf("unsupported target language %q", targetLang), nil)
	}
	source := a.languages.Primary()
	if target.Code == source.Code {
		return text, nil
	}

	req := Request{SourceLang: source.Code, SourceName: source.Name, TargetLang: target.Code, TargetName: target.Name}

	var fragment *htmlFragment
	if looksLikeHTML(text) {
		parsed, err := parseHTMLFragment(text)
		if err != nil {
			return "", apperrors.Wrap(apperrors.CodeProvider, "parse rich text", err)
		}
		if parsed.hasMarkup() {
			fragment = parsed
		}
	}
	if fragment == nil {
		req.Texts = []string{text}
		out, err := a.call(ctx, req)
		if err != nil {
			return "", err
		}
		return out[0], nil
	}

	req.Texts = fragment.texts()
	if len(req.Texts) == 0 {
		return text, nil
	}
	out, err := a.call(ctx, req)
	if err != nil {
		return "", err
	}
	translations := make(map[string]string, len(out))
	for i, segment := range req.Texts {
		translations[segment] = out[i]
	}
	rendered, err := fragment.render(translations)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeProvider, "render rich text", err)
	}
	return rendered, nil
}

func (a *Adapter) call(ctx context.Context, req Request) ([]string, error) {
	out, err := withRetry(ctx, a.retry, func(ctx context.Context) ([]string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
		defer cancel()
		result, err := a.backend.TranslateBatch(attemptCtx, req)
		if err != nil {
			a.logger.Debug("translation attempt failed", "target", req.TargetLang, "segments", len(req.Texts), "error", err)
			return nil, err
		}
		if len(result) != len(req.Texts) {
			return nil, &ProviderError{Message: "translation count mismatch", Retryable: true}
		}
		return result, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProvider, "translation failed", err)
	}
	return out, nil
}

var _ faq.Translator = (*Adapter)(nil)
