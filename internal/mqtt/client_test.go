package mqtt

import (
	"testing"
	"time"

	"github.com/Capstone-E1/pumpmatic_backend/config"
	"github.com/Capstone-E1/pumpmatic_backend/internal/models"
)

func newTestClient() *Client {
	return NewClient(config.MQTTConfig{
		BrokerURL:        "tcp://127.0.0.1:1883",
		ClientID:         "pumpmatic-test",
		KeepAlive:        30 * time.Second,
		PingTimeout:      5 * time.Second,
		TopicState:       "pumpmatic/state",
		TopicEvents:      "pumpmatic/events",
		TopicPumpCommand: "pumpmatic/pumps/command",
	})
}

func TestPublishPumpEvent_NeverBlocksCaller(t *testing.T) {
	client := newTestClient()

	// Never connected, so the drain goroutine discards everything. Publishing
	// well past the queue capacity must still return immediately: the control
	// cycle calls this under its own lock and can never wait on the broker.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			client.PublishPumpEvent(models.PumpLogEntry{
				PumpID: models.PumpP1,
				Action: models.ActionStart,
				Reason: "Underground Tank < 10.0%",
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected event publishing to return without waiting on the broker")
	}
}

func TestPublishSnapshot_SkipsWhenDisconnected(t *testing.T) {
	client := newTestClient()

	if client.IsConnected() {
		t.Fatal("Expected fresh client to report disconnected")
	}

	// Must be a no-op, not a connect attempt or a panic
	client.PublishSnapshot(models.SystemSnapshot{})
}
