package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/CareFusion/internal/risk"
)

// FallbackReply is returned by Converse whenever a real reply is not
// available.
const FallbackReply = "I'm sorry, I couldn't process that. Please try again."

const defaultTimeout = 30 * time.Second

// GenerateRequest is a single prompt for a text generation model. A nil
// Schema asks for free text.
type GenerateRequest struct {
	Model  string
	Prompt string
	Schema *Schema
}

// Generator is the outbound model call. Implementations return the raw
// text of the first candidate.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type ClientConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Policy  risk.Policy
}

// Client turns patient text into a validated, locally classified Result
// and produces chat replies.
type Client struct {
	gen    Generator
	cfg    ClientConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewClient(gen Generator, cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Policy == (risk.Policy{}) {
		cfg.Policy = risk.DefaultPolicy()
	}
	return &Client{
		gen:    gen,
		cfg:    cfg,
		logger: logger.With().Str("component", "assessment_client").Logger(),
		now:    time.Now,
	}
}

func (c *Client) Policy() risk.Policy { return c.cfg.Policy }

// Assess validates the inputs, calls the model once and classifies the
// reply with the local policy. It never retries; UserID and ID are left
// for the caller.
func (c *Client) Assess(ctx context.Context, mentalInput, physicalInput string) (Result, error) {
	if strings.TrimSpace(mentalInput) == "" {
		return Result{}, fmt.Errorf("%w: mental input is required", ErrValidation)
	}
	if strings.TrimSpace(physicalInput) == "" {
		return Result{}, fmt.Errorf("%w: physical input is required", ErrValidation)
	}
	if err := c.checkConfig(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.gen.Generate(ctx, GenerateRequest{
		Model:  c.cfg.Model,
		Prompt: assessmentPrompt(mentalInput, physicalInput),
		Schema: AssessmentSchema(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("%w: model call timed out after %s", ErrUpstream, c.cfg.Timeout)
		}
		return Result{}, fmt.Errorf("%w: model call failed: %w", ErrUpstream, err)
	}

	d, err := parseDraft(text)
	if err != nil {
		c.logger.Warn().Err(err).Msg("rejected model response")
		return Result{}, err
	}
	c.observe(d)

	level, route, disc := c.cfg.Policy.Reconcile(d.OverallRisk, d.MentalScore, d.PhysicalScore, d.ClaimedLevel, d.ClaimedRoute)
	if disc.Any() {
		c.logger.Warn().
			Float64("overall_risk", d.OverallRisk).
			Str("claimed_level", string(disc.ClaimedLevel)).
			Str("claimed_route", string(disc.ClaimedRoute)).
			Str("level", string(level)).
			Str("route", string(route)).
			Msg("model classification overridden")
	}

	return Result{
		MentalScore:     d.MentalScore,
		PhysicalScore:   d.PhysicalScore,
		OverallRisk:     d.OverallRisk,
		Level:           level,
		Route:           route,
		Reasoning:       d.Reasoning,
		Recommendations: d.Recommendations,
		Timestamp:       c.now().UTC().Truncate(time.Microsecond),
	}, nil
}

// Converse never fails: every problem is logged and answered with
// FallbackReply.
func (c *Client) Converse(ctx context.Context, message, chatContext string) string {
	if strings.TrimSpace(message) == "" {
		return FallbackReply
	}
	if err := c.checkConfig(); err != nil {
		c.logger.Warn().Err(err).Msg("chat unavailable")
		return FallbackReply
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.gen.Generate(ctx, GenerateRequest{
		Model:  c.cfg.Model,
		Prompt: conversationPrompt(message, chatContext),
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("chat model call failed")
		return FallbackReply
	}
	if text = strings.TrimSpace(text); text == "" {
		c.logger.Warn().Msg("chat model returned empty text")
		return FallbackReply
	}
	return text
}

func (c *Client) checkConfig() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrConfig)
	}
	if c.gen == nil {
		return fmt.Errorf("%w: no model client configured", ErrConfig)
	}
	return nil
}

func (c *Client) observe(d *draft) {
	if len(d.clamped) > 0 {
		c.logger.Warn().Strs("fields", d.clamped).Msg("model scores clamped to [0,100]")
	}
	if d.recCount != wantRecommendations || len(d.Recommendations) != wantRecommendations {
		c.logger.Info().
			Int("returned", d.recCount).
			Int("kept", len(d.Recommendations)).
			Msg("recommendation count differs from 3")
	}
}
