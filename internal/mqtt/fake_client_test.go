package mqtt

import (
	"time"

	"github.com/berfenger/pac2mqtt/internal/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type publishedMessage struct {
	topic   string
	qos     byte
	retain  bool
	payload any
}

// fakeClient records publications, any other mqtt.Client method panics.
type fakeClient struct {
	mqtt.Client
	published []publishedMessage
	err       error
	stuck     bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, publishedMessage{topic: topic, qos: qos, retain: retained, payload: payload})
	return &fakeToken{err: c.err, stuck: c.stuck}
}

func (c *fakeClient) topics() []string {
	var topics []string
	for _, m := range c.published {
		topics = append(topics, m.topic)
	}
	return topics
}

func (c *fakeClient) payloadOf(topic string) any {
	for _, m := range c.published {
		if m.topic == topic {
			return m.payload
		}
	}
	return nil
}

type fakeToken struct {
	err   error
	stuck bool
}

func (t *fakeToken) Wait() bool {
	return !t.stuck
}

func (t *fakeToken) WaitTimeout(time.Duration) bool {
	return !t.stuck
}

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.stuck {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error {
	return t.err
}

func testClient(fake *fakeClient) *MQTTClient {
	cfg := util.LoadTestConfig()
	return &MQTTClient{client: fake, cfg: cfg.MQTT}
}
