// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/env"
)

const (
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// ConnectMQTT connects a paho client to broker.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "connect to MQTT broker %s", broker)
	}
	log.WithField("broker", broker).Info("connected to MQTT broker")
	return client, nil
}

// Publisher is an acquisition sink that publishes every averaged record,
// retained, to one topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) Name() string { return "mqtt" }

// Append publishes rec as JSON. It never blocks longer than publishTimeout.
func (p *Publisher) Append(rec env.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("publish to %s timed out", p.topic)
	}
	return errors.Wrapf(token.Error(), "publish to %s", p.topic)
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
}

// subscribeRecords subscribes to topic and hands every decodable record to fn.
// Undecodable payloads are logged and dropped.
func subscribeRecords(client mqtt.Client, topic, who string, fn func(env.Record)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec env.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Warnf("%s: record unmarshal error", who)
			return
		}
		fn(rec)
	})
	token.Wait()
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe to %s", topic)
	}
	log.WithField("topic", topic).Infof("%s: subscribed", who)
	return nil
}
