package bridge

import (
	"fmt"
	"net"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/rs/zerolog/log"
)

// Broker is an in-process MQTT broker for sites without one. The MQTT
// bridge connects to it like any other broker.
type Broker struct {
	server *mochi.Server
	addr   string
}

// StartBroker listens for MQTT clients on addr. Every client is allowed.
func StartBroker(addr string) (*Broker, error) {
	server := mochi.New(&mochi.Options{InlineClient: true})

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add broker auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "lfd", Address: addr})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		if err := server.Serve(); err != nil {
			log.Error().Err(err).Msg("Embedded MQTT broker stopped")
		}
	}()

	log.Info().Str("address", tcp.Address()).Msg("Embedded MQTT broker listening")
	return &Broker{server: server, addr: tcp.Address()}, nil
}

// URL is the broker URL clients on this host connect to.
func (b *Broker) URL() string {
	host, port, err := net.SplitHostPort(b.addr)
	if err != nil {
		return "mqtt://" + b.addr
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "mqtt://" + net.JoinHostPort(host, port)
}

// Watch delivers every message matching filter to fn from inside the
// broker.
func (b *Broker) Watch(filter string, id int, fn func(topic string, payload []byte)) error {
	return b.server.Subscribe(filter, id, func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
		fn(pk.TopicName, pk.Payload)
	})
}

// Publish injects a message as if a client had sent it.
func (b *Broker) Publish(topic string, payload []byte, retain bool) error {
	return b.server.Publish(topic, payload, retain, 1)
}

// Close stops the broker and disconnects its clients.
func (b *Broker) Close() error {
	return b.server.Close()
}
