// Package redis implements the outbound queue contract between the sync
// worker and the notification bot. Three Redis lists carry JSON payloads:
// change events, reminder tasks and inbound control commands.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads. Blocking pops use their
	// own deadline on top of this.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUEUE NAMES
// ══════════════════════════════════════════════════════════════════════════════

// Queue names shared with the bot process. These are a wire contract; renaming
// one breaks the consumer.
const (
	// ScheduleChangesQueue carries schedule.ChangeEvent payloads.
	ScheduleChangesQueue = "schedule_changes_queue"

	// RemindersQueue carries schedule.LessonReminder payloads.
	RemindersQueue = "reminders_queue"

	// ControlQueue carries controlEnvelope payloads from the bot to the
	// worker.
	ControlQueue = "control_queue"
)

// Control commands accepted on ControlQueue.
const (
	CommandRunHotSync  = "run_hot_schedule_sync"
	CommandRunDictSync = "run_dict_sync"

	// controlMessageType tags every control envelope.
	controlMessageType = "control"
)

// controlEnvelope is the wire format of one control queue entry.
type controlEnvelope struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// ErrQueueConnection is returned when the Redis connection fails.
var ErrQueueConnection = errors.New("redis: connection failed")

// ══════════════════════════════════════════════════════════════════════════════
// QUEUE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Queue is the Redis-backed outbound queue. It implements
// schedule.ChangePublisher and schedule.ReminderPublisher.
type Queue struct {
	client *redis.Client
	config Config
}

// NewQueue creates a Queue and verifies connectivity.
func NewQueue(cfg Config) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQueueConnection, err)
	}

	return &Queue{client: client, config: cfg}, nil
}

// NewQueueFromURL creates a Queue from a redis:// URL.
func NewQueueFromURL(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: failed to parse URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQueueConnection, err)
	}

	return &Queue{client: client, config: DefaultConfig()}, nil
}

// Close closes the underlying Redis client.
func (q *Queue) Close() error {
	return q.client.Close()
}

// Ping checks Redis connectivity.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// OUTBOUND: CHANGES AND REMINDERS
// ══════════════════════════════════════════════════════════════════════════════

// PushChanges appends change events to the changes queue, preserving order.
func (q *Queue) PushChanges(ctx context.Context, changes []schedule.ChangeEvent) error {
	if len(changes) == 0 {
		return nil
	}

	payloads := make([]interface{}, 0, len(changes))
	for _, c := range changes {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal change event: %w", err)
		}
		payloads = append(payloads, data)
	}

	if err := q.client.RPush(ctx, ScheduleChangesQueue, payloads...).Err(); err != nil {
		return fmt.Errorf("push changes: %w", err)
	}
	return nil
}

// PushReminders appends reminder tasks to the reminders queue.
func (q *Queue) PushReminders(ctx context.Context, reminders []schedule.LessonReminder) error {
	if len(reminders) == 0 {
		return nil
	}

	payloads := make([]interface{}, 0, len(reminders))
	for _, rem := range reminders {
		data, err := json.Marshal(rem)
		if err != nil {
			return fmt.Errorf("marshal reminder: %w", err)
		}
		payloads = append(payloads, data)
	}

	if err := q.client.RPush(ctx, RemindersQueue, payloads...).Err(); err != nil {
		return fmt.Errorf("push reminders: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INBOUND: CONTROL COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// PushControlCommand enqueues a control command. The bot process uses this to
// trigger an out-of-band sync.
func (q *Queue) PushControlCommand(ctx context.Context, command string) error {
	data, err := encodeControlCommand(command)
	if err != nil {
		return fmt.Errorf("marshal control command: %w", err)
	}
	if err := q.client.RPush(ctx, ControlQueue, data).Err(); err != nil {
		return fmt.Errorf("push control command: %w", err)
	}
	return nil
}

// PopControlCommand blocks for up to timeout waiting for the next control
// command. It returns ("", nil) when the timeout expires with an empty queue,
// and an error for a payload that does not decode as a control envelope.
func (q *Queue) PopControlCommand(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BLPop(ctx, timeout, ControlQueue).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("pop control command: %w", err)
	}

	// BLPOP returns [key, value].
	if len(result) < 2 {
		return "", nil
	}
	return decodeControlCommand([]byte(result[1]))
}

func encodeControlCommand(command string) ([]byte, error) {
	return json.Marshal(controlEnvelope{
		Type:    controlMessageType,
		Command: command,
	})
}

func decodeControlCommand(data []byte) (string, error) {
	var envelope controlEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("decode control command: %w", err)
	}
	return envelope.Command, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTROSPECTION
// ══════════════════════════════════════════════════════════════════════════════

// QueueLength returns the current length of a queue. Used by health logging.
func (q *Queue) QueueLength(ctx context.Context, queue string) (int64, error) {
	n, err := q.client.LLen(ctx, queue).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length %s: %w", queue, err)
	}
	return n, nil
}
