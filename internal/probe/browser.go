package probe

import (
	"context"
	"fmt"

	"github.com/nao1215/privacyguard/internal/analyzer"
	"github.com/nao1215/privacyguard/internal/model"
)

// ProbeFingerprint returns the fingerprint section of the signals file with
// its uniqueness score computed. Any score present in the file is replaced.
func (s *Suite) ProbeFingerprint(_ context.Context) (model.FingerprintResult, error) {
	sig, err := s.signals()
	if err != nil {
		return model.FingerprintResult{}, err
	}
	if sig.Fingerprint == nil {
		return model.FingerprintResult{}, fmt.Errorf("%w: fingerprint", ErrSignalSectionMissing)
	}

	fp := *sig.Fingerprint
	fp.Fonts = append([]string(nil), fp.Fonts...)
	fp.UniquenessScore = analyzer.Uniqueness(fp)

	s.logger.Debug("fingerprint imported", "fingerprint", fp.Digest(), "uniqueness", fp.UniquenessScore)
	return fp, nil
}

// ProbeBrowser returns the browser section of the signals file.
func (s *Suite) ProbeBrowser(_ context.Context) (model.BrowserResult, error) {
	sig, err := s.signals()
	if err != nil {
		return model.BrowserResult{}, err
	}
	if sig.Browser == nil {
		return model.BrowserResult{}, fmt.Errorf("%w: browser", ErrSignalSectionMissing)
	}

	b := *sig.Browser
	b.Languages = append([]string(nil), b.Languages...)
	b.Plugins = append([]string{}, b.Plugins...)

	s.logger.Debug("browser signals imported", "user_agent", b.UserAgent, "plugins", len(b.Plugins))
	return b, nil
}
