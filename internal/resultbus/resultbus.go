// Package resultbus optionally publishes a finished analysis document
// onto an MQTT topic, for a live dashboard consumer.
package resultbus

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher wraps a connected MQTT client for one-shot result
// publication from the analyze CLI.
type Publisher struct {
	client mqtt.Client
}

// Connect dials the given broker URL and returns a ready Publisher.
func Connect(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", brokerURL, token.Error())
	}
	return &Publisher{client: client}, nil
}

// Publish marshals v to JSON and publishes it, retained, on topic.
func (p *Publisher) Publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal result for publication: %w", err)
	}

	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish result to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
