package bridge

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Bridges is the set of bridges a Config enables.
type Bridges struct {
	host  Host
	sinks []Sink

	natsConn *nats.Conn
	nats     *NATS
	redis    *redis.Client
	mqtt     *MQTT
	broker   *Broker
}

// Open connects every configured bridge. On error the bridges opened so
// far are closed.
func Open(ctx context.Context, cfg Config, h Host) (*Bridges, error) {
	b := &Bridges{host: h}

	if cfg.NATSURL != "" {
		conn, err := ConnectNATS(cfg.NATSURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.natsConn = conn
		b.nats = NewNATS(conn, cfg.NATSPrefix, h)
		if err := b.nats.Start(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.sinks = append(b.sinks, b.nats)
		log.Info().Str("url", cfg.NATSURL).Msg("NATS bridge enabled")
	}

	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := ConnectRedis(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = client
		b.sinks = append(b.sinks, NewShadow(client, cfg.ShadowPrefix, cfg.ShadowTTL, h))
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis shadow enabled")
	}

	mqttURL := cfg.MQTTURL
	if cfg.MQTTListen != "" {
		broker, err := StartBroker(cfg.MQTTListen)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.broker = broker
		if mqttURL == "" {
			mqttURL = broker.URL()
		}
	}

	if mqttURL != "" {
		m, err := ConnectMQTT(ctx, mqttURL, cfg.MQTTClientID, cfg.MQTTPrefix, h)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.mqtt = m
		b.sinks = append(b.sinks, m)
		log.Info().Str("url", mqttURL).Msg("MQTT bridge enabled")
	}

	return b, nil
}

// Names lists the enabled bridges.
func (b *Bridges) Names() []string {
	names := make([]string, 0, len(b.sinks))
	for _, s := range b.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Run forwards display events to the enabled bridges until ctx is canceled.
func (b *Bridges) Run(ctx context.Context) {
	Run(ctx, b.host, b.sinks...)
}

// Close disconnects every bridge.
func (b *Bridges) Close() {
	if b.nats != nil {
		b.nats.Stop()
	}
	if b.natsConn != nil {
		b.natsConn.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if b.mqtt != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.mqtt.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect MQTT")
		}
	}
	if b.broker != nil {
		if err := b.broker.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop embedded MQTT broker")
		}
	}
}
