package bridge

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/device"
)

// MQTT publishes retained display state under <prefix>/<display>/ and
// accepts command payloads on <prefix>/<display>/command:
//
//	<prefix>/<display>/status        connection state
//	<prefix>/<display>/var/<name>    one topic per variable
//	<prefix>/<display>/fb/<feedback> "1" or "0"
type MQTT struct {
	cm     *autopaho.ConnectionManager
	prefix string
	host   Host
}

// ConnectMQTT starts an autopaho connection that reconnects until ctx is
// canceled. It does not wait for the first connection.
func ConnectMQTT(ctx context.Context, brokerURL, clientID, prefix string, h Host) (*MQTT, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT url: %w", err)
	}

	b := &MQTT{prefix: prefix, host: h}
	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		KeepAlive:                     20,
		CleanStartOnInitialConnection: false,
		SessionExpiryInterval:         60,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			log.Info().Str("broker", u.Host).Msg("MQTT connection up")
			// Subscribing here re-establishes the subscription after reconnects.
			_, err := cm.Subscribe(context.Background(), &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{
					{Topic: b.prefix + "/+/command", QoS: 1},
				},
			})
			if err != nil {
				log.Error().Err(err).Msg("MQTT command subscription failed")
			}
		},
		OnConnectError: func(err error) {
			log.Warn().Err(err).Str("broker", u.Host).Msg("MQTT connection attempt failed")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				func(pr paho.PublishReceived) (bool, error) {
					b.onCommand(ctx, pr.Packet.Topic, pr.Packet.Payload)
					return true, nil
				},
			},
			OnClientError: func(err error) {
				log.Warn().Err(err).Msg("MQTT client error")
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start MQTT connection: %w", err)
	}
	b.cm = cm
	return b, nil
}

func (b *MQTT) Name() string { return "mqtt" }

// Done is closed once the connection manager has shut down.
func (b *MQTT) Done() <-chan struct{} {
	return b.cm.Done()
}

// Handle publishes the retained topics an event touches.
func (b *MQTT) Handle(ctx context.Context, evt device.Event) error {
	var vars map[string]string
	if evt.Type == device.EventState {
		var err error
		if vars, err = b.host.Variables(ctx, evt.Device); err != nil {
			return err
		}
	}
	for topic, payload := range b.topics(evt, vars) {
		_, err := b.cm.Publish(ctx, &paho.Publish{
			QoS:     1,
			Retain:  true,
			Topic:   topic,
			Payload: []byte(payload),
		})
		if err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}
	return nil
}

// topics maps an event to retained topic payloads. Only variables named in
// evt.Changed are republished.
func (b *MQTT) topics(evt device.Event, vars map[string]string) map[string]string {
	base := b.prefix + "/" + evt.Device + "/"
	out := make(map[string]string)
	switch evt.Type {
	case device.EventStatus:
		if evt.Status != nil {
			out[base+"status"] = evt.Status.String()
		}
	case device.EventState:
		for _, name := range evt.Changed {
			if v, ok := vars[name]; ok {
				out[base+"var/"+name] = v
			}
		}
	case device.EventFeedback:
		active := "0"
		if evt.Active {
			active = "1"
		}
		out[base+"fb/"+evt.Feedback] = active
	case device.EventDeviceRemoved:
		// An empty retained payload clears the topic.
		out[base+"status"] = ""
	}
	return out
}

// commandDisplay extracts the display ID from a command topic.
func (b *MQTT) commandDisplay(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/command")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (b *MQTT) onCommand(ctx context.Context, topic string, payload []byte) {
	id, ok := b.commandDisplay(topic)
	if !ok {
		return
	}
	text, err := dispatch(ctx, b.host, id, payload)
	if err != nil {
		log.Warn().Err(err).Str("display", id).Msg("MQTT command rejected")
		return
	}
	log.Debug().Str("display", id).Str("command", text).Msg("MQTT command submitted")
}

// Disconnect closes the broker connection.
func (b *MQTT) Disconnect(ctx context.Context) error {
	return b.cm.Disconnect(ctx)
}
