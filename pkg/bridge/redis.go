package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urmzd/lfdctl/pkg/device"
)

// Shadow keeps a Redis hash per display (<prefix>:shadow:<display>) holding
// its connection state, variables and last update time.
type Shadow struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	host   Host
}

// ConnectRedis opens a client and checks the server answers.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewShadow creates a shadow writer. A zero ttl keeps keys forever.
func NewShadow(client *redis.Client, prefix string, ttl time.Duration, h Host) *Shadow {
	return &Shadow{client: client, prefix: prefix, ttl: ttl, host: h}
}

func (s *Shadow) Name() string { return "redis" }

// Key returns the shadow hash key of display id.
func (s *Shadow) Key(id string) string {
	return s.prefix + ":shadow:" + id
}

// Handle updates the shadow of the event's display.
func (s *Shadow) Handle(ctx context.Context, evt device.Event) error {
	key := s.Key(evt.Device)
	if evt.Type == device.EventDeviceRemoved {
		return s.client.Del(ctx, key).Err()
	}

	var vars map[string]string
	if evt.Type == device.EventState {
		var err error
		if vars, err = s.host.Variables(ctx, evt.Device); err != nil {
			return err
		}
	}
	fields := shadowFields(evt, vars)
	if len(fields) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

// shadowFields returns the hash fields an event updates.
func shadowFields(evt device.Event, vars map[string]string) map[string]any {
	fields := make(map[string]any)
	switch evt.Type {
	case device.EventStatus:
		if evt.Status == nil {
			break
		}
		fields["connection"] = evt.Status.State.String()
		fields["reason"] = evt.Status.Reason
	case device.EventState:
		for k, v := range vars {
			fields["var:"+k] = v
		}
	case device.EventFeedback:
		fields["fb:"+evt.Feedback] = strconv.FormatBool(evt.Active)
	}
	if len(fields) == 0 {
		return nil
	}
	fields["ts"] = evt.Timestamp.Unix()
	return fields
}
