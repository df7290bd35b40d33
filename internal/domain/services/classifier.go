package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"insafe-lab/internal/config"
	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/infrastructure/cache"
	"insafe-lab/pkg/logger"
)

const classifierSource = "zero-shot-classifier"

// labels offered to the classifier per content type
var classifierLabels = map[models.ContentType][]string{
	models.ContentTypeURL:   {"safe", "phishing", "malware", "scam"},
	models.ContentTypeQR:    {"safe", "phishing", "malware", "scam"},
	models.ContentTypeAPK:   {"safe", "malware", "adware", "spyware"},
	models.ContentTypeSMS:   {"scam", "spam", "safe"},
	models.ContentTypeCall:  {"scam", "spam", "safe"},
	models.ContentTypePhone: {"scam", "spam", "safe"},
}

// ClassifierVerdict is the top label returned by the classification service
type ClassifierVerdict struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type classifierRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type classifierResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classifier calls the external zero-shot classification service and turns
// its top label into an external signal
type Classifier struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
	cache      JSONCache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewClassifier creates a classifier client. cache may be nil.
func NewClassifier(cfg config.ClassifierConfig, jsonCache JSONCache, log *logger.Logger) *Classifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Classifier{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		enabled:    cfg.Enabled && cfg.URL != "",
		httpClient: &http.Client{Timeout: timeout},
		cache:      jsonCache,
		cacheTTL:   cfg.CacheTTL,
		logger:     log.WithComponent("classifier"),
	}
}

// Enabled reports whether a classification service is configured
func (c *Classifier) Enabled() bool {
	return c != nil && c.enabled
}

// Signal classifies text and maps the verdict to a 0-100 external signal.
// Any failure yields an unavailable signal.
func (c *Classifier) Signal(ctx context.Context, text string, ct models.ContentType) models.Signal {
	sig := models.Signal{Kind: models.SignalExternal, Source: classifierSource}
	if !c.Enabled() {
		return sig
	}

	verdict, err := c.Classify(ctx, text, ct)
	if err != nil {
		c.logger.Warn().Err(err).Str("content_type", string(ct)).Msg("classifier unavailable, scoring without it")
		return sig
	}

	sig.Available = true
	sig.Confidence = ClassifierConfidence(ct, verdict)
	return sig
}

// Classify returns the top label for text, consulting the cache first
func (c *Classifier) Classify(ctx context.Context, text string, ct models.ContentType) (ClassifierVerdict, error) {
	labels, ok := classifierLabels[ct]
	if !ok {
		return ClassifierVerdict{}, fmt.Errorf("%w: %q", models.ErrUnknownContentType, ct)
	}

	key := cache.ClassifierKey(string(ct), digest(text))
	if c.cache != nil {
		var cached ClassifierVerdict
		if err := c.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	verdict, err := c.call(ctx, text, labels)
	if err != nil {
		return ClassifierVerdict{}, err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.SetJSON(ctx, key, verdict, c.cacheTTL); err != nil {
			c.logger.Debug().Err(err).Msg("failed to cache classifier verdict")
		}
	}
	return verdict, nil
}

func (c *Classifier) call(ctx context.Context, text string, labels []string) (ClassifierVerdict, error) {
	body, err := json.Marshal(classifierRequest{Text: text, Labels: labels})
	if err != nil {
		return ClassifierVerdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan", bytes.NewReader(body))
	if err != nil {
		return ClassifierVerdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifierVerdict{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ClassifierVerdict{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifierResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ClassifierVerdict{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return ClassifierVerdict{}, fmt.Errorf("classifier returned %d labels and %d scores", len(out.Labels), len(out.Scores))
	}

	best := 0
	for i, s := range out.Scores {
		if s > out.Scores[best] {
			best = i
		}
	}
	return ClassifierVerdict{Label: out.Labels[best], Score: out.Scores[best]}, nil
}

// ClassifierConfidence maps a classifier verdict to the 0-100 scale. For
// url, qr and apk any non-safe label counts in full; for message-like types
// scam counts in full and spam at half weight.
func ClassifierConfidence(ct models.ContentType, v ClassifierVerdict) int {
	score := math.Max(0, math.Min(1, v.Score))
	label := strings.ToLower(v.Label)

	var conf float64
	switch ct {
	case models.ContentTypeURL, models.ContentTypeQR, models.ContentTypeAPK:
		if label != "safe" {
			conf = score * 100
		}
	default:
		switch label {
		case "scam":
			conf = score * 100
		case "spam":
			conf = score * 50
		}
	}
	return int(math.Round(conf))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
