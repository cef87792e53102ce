// Package training collects user-issued profile corrections as labeled
// examples. It sits outside the real-time decision loop: submissions are
// queued and never block or fail a live conversation turn.
package training

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// Correction is a user's fix to a detected profile field, kept as a
// labeled training example.
type Correction struct {
	SessionID       string    `json:"session_id"`
	Field           string    `json:"field"` // "industry", "role", "sophistication"
	DetectedValue   string    `json:"detected_value"`
	CorrectedValue  string    `json:"corrected_value"`
	SourceText      string    `json:"source_text,omitempty"`
	AnalysisVersion string    `json:"analysis_version"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Collector appends corrections to a capped Redis list for offline
// consumption by the training pipeline.
type Collector struct {
	redis    *redis.Client
	logger   *logging.Logger
	queueKey string
	queueCap int64
}

// NewCollector creates a training correction collector.
func NewCollector(client *redis.Client, queueKey string, queueCap int, logger *logging.Logger) *Collector {
	if client == nil {
		panic("training: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if queueKey == "" {
		queueKey = "training:corrections"
	}
	if queueCap <= 0 {
		queueCap = 10000
	}
	return &Collector{
		redis:    client,
		logger:   logger.Component("training"),
		queueKey: queueKey,
		queueCap: int64(queueCap),
	}
}

// SubmitCorrection enqueues one labeled example. The queue is capped;
// oldest entries fall off first once the cap is reached.
func (c *Collector) SubmitCorrection(ctx context.Context, corr Correction) error {
	if corr.SubmittedAt.IsZero() {
		corr.SubmittedAt = time.Now().UTC()
	}
	if corr.AnalysisVersion == "" {
		corr.AnalysisVersion = profile.AnalysisVersion
	}

	data, err := json.Marshal(corr)
	if err != nil {
		return fmt.Errorf("training: failed to marshal correction: %w", err)
	}

	pipe := c.redis.TxPipeline()
	pipe.RPush(ctx, c.queueKey, data)
	pipe.LTrim(ctx, c.queueKey, -c.queueCap, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("training: failed to enqueue correction: %w", err)
	}

	c.logger.Info("correction collected",
		"session_id", corr.SessionID,
		"field", corr.Field,
		"corrected_value", corr.CorrectedValue,
	)
	return nil
}

// PendingCount reports how many corrections await pickup.
func (c *Collector) PendingCount(ctx context.Context) (int64, error) {
	n, err := c.redis.LLen(ctx, c.queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("training: failed to read queue length: %w", err)
	}
	return n, nil
}

// Drain pops up to limit corrections for the training pipeline.
func (c *Collector) Drain(ctx context.Context, limit int) ([]Correction, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []Correction
	for i := 0; i < limit; i++ {
		data, err := c.redis.LPop(ctx, c.queueKey).Bytes()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return out, fmt.Errorf("training: failed to pop correction: %w", err)
		}
		var corr Correction
		if err := json.Unmarshal(data, &corr); err != nil {
			c.logger.Warn("dropping undecodable correction", "error", err)
			continue
		}
		out = append(out, corr)
	}
	return out, nil
}
