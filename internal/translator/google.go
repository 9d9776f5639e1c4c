package translator

import (
	"context"
	"fmt"
	"os"
	"time"

	translate "cloud.google.com/go/translate"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"fluxprompt/internal/params"
	"fluxprompt/internal/placeholder"
	"fluxprompt/internal/postprocess"
)

// GoogleService is the literal fallback: it renders the description into
// English with Google Cloud Translate and leaves the generation knobs at
// their defaults. No prompt engineering happens here.
type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Generate(ctx context.Context, cfg ServiceConfig, req GenerateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.Credentials != "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Credentials)
	}

	opts := []option.ClientOption{}
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("failed to create client: %v", err)
	}
	defer client.Close()

	// Lora tags and wildcards must come through the translation verbatim.
	protected, markers := placeholder.Protect(req.Text)

	translations, err := client.Translate(ctx, []string{protected}, language.English, &translate.Options{
		Source: language.Chinese,
	})
	if err != nil {
		result.Error = fmt.Sprintf("translation failed: %v", err)
		return result, fmt.Errorf("translation failed: %v", err)
	}

	if len(translations) == 0 {
		result.Error = "no translation returned"
		return result, fmt.Errorf("%w: no translation returned", ErrMalformedResponse)
	}

	text := placeholder.Restore(translations[0].Text, markers)
	if missing := placeholder.Validate(translations[0].Text, markers); len(missing) > 0 {
		logrus.WithField("missing", missing).Warn("Translation dropped placeholder markers")
	}

	result.Prompt = params.Passthrough(postprocess.NormalizeList(text))
	result.RawContent = translations[0].Text

	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
