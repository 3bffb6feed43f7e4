package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/valkey-io/valkey-go"
)

type Client struct {
	client valkey.Client
}

const (
	sentMessageKeyPrefix = "sent_message:"
	sentMessageTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// TrackSentMessage caches an outbound message so later delivery reports can
// be matched against it.
func (c *Client) TrackSentMessage(ctx context.Context, msg domain.TrackedMessage) error {
	if msg.MessageID == "" {
		return fmt.Errorf("tracked message has no id")
	}

	return c.store(ctx, &msg)
}

// RecordDeliveryStatus updates the latest status of a tracked message.
// Reports for unknown or expired ids are ignored.
func (c *Client) RecordDeliveryStatus(ctx context.Context, messageID, status string, at time.Time) error {
	msg, err := c.GetTrackedMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		logger.Debugf("No tracked message for delivery report %s", messageID)
		return nil
	}

	msg.Status = status
	msg.StatusUpdateAt = &at

	return c.store(ctx, msg)
}

func (c *Client) store(ctx context.Context, msg *domain.TrackedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal tracked message: %w", err)
	}

	key := sentMessageKeyPrefix + msg.MessageID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(sentMessageTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache sent message: %w", err)
	}

	logger.Debugf("Cached message %s (status: %q)", msg.MessageID, msg.Status)

	return nil
}

func (c *Client) GetTrackedMessage(ctx context.Context, messageID string) (*domain.TrackedMessage, error) {
	key := sentMessageKeyPrefix + messageID

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached message: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached message: %w", err)
	}

	var msg domain.TrackedMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &msg, nil
}

func (c *Client) GetAllTrackedMessages(ctx context.Context) (map[string]*domain.TrackedMessage, error) {
	pattern := sentMessageKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	result := make(map[string]*domain.TrackedMessage, len(keys))

	for _, key := range keys {
		msg, err := c.GetTrackedMessage(ctx, strings.TrimPrefix(key, sentMessageKeyPrefix))
		if err != nil {
			logger.Warnf("failed to read tracked message %q: %v", key, err)
			continue
		}
		if msg == nil {
			continue
		}

		result[msg.MessageID] = msg
	}

	return result, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
