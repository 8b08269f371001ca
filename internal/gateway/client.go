package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/auth"
	"github.com/spec-kit/helpdesk-bot/internal/config"
	"github.com/spec-kit/helpdesk-bot/internal/conversation"
)

const tokenSubject = "helpdesk-bot"

// Client posts intents to the messaging gateway's outbound endpoint.
type Client struct {
	url     string
	timeout time.Duration
	tokens  *auth.TokenManager
	logger  *zap.Logger
}

// NewClient builds a client for cfg.OutboundURL.
func NewClient(cfg config.GatewayConfig, tokens *auth.TokenManager, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:     strings.TrimRight(cfg.OutboundURL, "/"),
		timeout: cfg.Timeout(),
		tokens:  tokens,
		logger:  logger.Named("gateway"),
	}
}

// Deliver sends one intent and returns the reference of the delivered message.
func (c *Client) Deliver(ctx context.Context, intent conversation.Intent) (conversation.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return conversation.MessageRef{}, err
	}
	token, _, err := c.tokens.GenerateToken(tokenSubject, auth.AudienceGateway)
	if err != nil {
		return conversation.MessageRef{}, fmt.Errorf("sign gateway token: %w", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(c.url + "/v1/intents")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	agent.JSON(intent)
	agent.Timeout(timeout)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.logger.Warn("gateway request failed",
			zap.String("kind", string(intent.Kind)),
			zap.Int64("chat_id", intent.ChatID),
			zap.Errors("errors", errs),
		)
		return conversation.MessageRef{}, fmt.Errorf("deliver %s to %d: %w", intent.Kind, intent.ChatID, errs[0])
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		c.logger.Warn("gateway rejected intent",
			zap.String("kind", string(intent.Kind)),
			zap.Int64("chat_id", intent.ChatID),
			zap.Int("status", status),
		)
		return conversation.MessageRef{}, fmt.Errorf("deliver %s to %d: gateway status %d", intent.Kind, intent.ChatID, status)
	}

	var ref conversation.MessageRef
	if len(body) > 0 {
		if err := json.Unmarshal(body, &ref); err != nil {
			return conversation.MessageRef{}, fmt.Errorf("decode gateway response: %w", err)
		}
	}
	if ref.ChatID == 0 {
		ref.ChatID = intent.ChatID
	}
	return ref, nil
}
