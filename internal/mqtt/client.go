package mqtt

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
	"github.com/Capstone-E1/pumpmatic_backend/internal/services"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client wraps the MQTT client with pump automation specific functionality:
// it publishes system snapshots and pump events, and accepts manual override
// commands on the command topic.
type Client struct {
	client         mqtt.Client
	parser         *services.CommandParser
	commandHandler func(*services.PumpCommand)
	errorHandler   func(error)
	isConnected    bool
	topics         config.MQTTConfig
	events         chan models.PumpLogEntry
}

// NewClient creates a new MQTT client for the pump automation backend
func NewClient(cfg config.MQTTConfig) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(cfg.PingTimeout)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := &Client{
		parser:      services.NewCommandParser(),
		isConnected: false,
		topics:      cfg,
		events:      make(chan models.PumpLogEntry, 128),
	}

	// Set connection handlers
	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	go client.publishEvents()

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("Connecting to MQTT broker...")

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("Successfully connected to MQTT broker")
	c.isConnected = true
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected {
		c.client.Disconnect(250)
		c.isConnected = false
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected && c.client.IsConnected()
}

// SetCommandHandler sets the callback for parsed pump override commands
func (c *Client) SetCommandHandler(handler func(*services.PumpCommand)) {
	c.commandHandler = handler
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.errorHandler = handler
}

// SubscribeToPumpCommands subscribes to the manual override command topic
func (c *Client) SubscribeToPumpCommands() error {
	topic := c.topics.TopicPumpCommand

	if token := c.client.Subscribe(topic, 1, c.pumpCommandHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	log.Printf("Subscribed to topic: %s", topic)

	return nil
}

// pumpCommandHandler processes incoming pump override commands
func (c *Client) pumpCommandHandler(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received pump command on topic %s: %s", msg.Topic(), string(msg.Payload()))

	// Try parsing as JSON first (preferred format)
	cmd, err := c.parser.ParseCommandJSON(msg.Payload())
	if err != nil {
		// Fallback to comma-separated format
		cmd, err = c.parser.ParseCommandString(string(msg.Payload()))
		if err != nil {
			log.Printf("Failed to parse pump command: %v", err)
			if c.errorHandler != nil {
				c.errorHandler(fmt.Errorf("pump command parsing failed: %w", err))
			}
			return
		}
	}

	log.Printf("Parsed pump command: %s", c.parser.FormatCommand(cmd))

	if c.commandHandler != nil {
		c.commandHandler(cmd)
	}
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established
func (c *Client) onConnect(client mqtt.Client) {
	log.Println("MQTT client connected")
	c.isConnected = true
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	c.isConnected = false

	if c.errorHandler != nil {
		c.errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}

// PublishSnapshot publishes the post-cycle system snapshot to the state
// topic. The method satisfies the cycle driver's publisher contract;
// publish failures are logged only so a slow broker never stalls the loop.
func (c *Client) PublishSnapshot(snapshot models.SystemSnapshot) {
	if !c.IsConnected() {
		return
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("Failed to marshal system snapshot: %v", err)
		return
	}

	if token := c.client.Publish(c.topics.TopicState, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("Failed to publish system snapshot: %v", token.Error())
	}
}

// PublishPumpEvent queues a pump event for the events topic. The send never
// blocks the caller; when the queue is full the event is dropped (the event
// store holds the durable record).
func (c *Client) PublishPumpEvent(entry models.PumpLogEntry) {
	select {
	case c.events <- entry:
	default:
		log.Printf("⚠️  Event queue full, dropping %s event for %s", entry.Action, entry.PumpID)
	}
}

// publishEvents drains the event queue on its own goroutine, so a slow or
// stalled broker only delays telemetry, never the control cycle
func (c *Client) publishEvents() {
	for entry := range c.events {
		if !c.IsConnected() {
			continue
		}

		payload, err := json.Marshal(entry)
		if err != nil {
			log.Printf("Failed to marshal pump event: %v", err)
			continue
		}

		if token := c.client.Publish(c.topics.TopicEvents, 1, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("Failed to publish pump event: %v", token.Error())
		}
	}
}
