package middleware

import (
	"encoding/json"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var (
	clientMutex sync.RWMutex
	mqttClient  mqtt.Client
	brokerURL   = "tcp://0.0.0.0:1883" // Default MQTT broker URL
)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// SetBrokerURL allows configuration of the MQTT broker URL.
func SetBrokerURL(url string) {
	brokerURL = url
}

// CreateMQTTClient connects the server-side MQTT client used to push
// schedule-change events to player sessions.
func CreateMQTTClient(clientName string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	clientMutex.Lock()
	mqttClient = client
	clientMutex.Unlock()

	log.Info().Str("client", clientName).Msg("MQTT client initialized")
	return client, nil
}

type scheduleChangeEvent struct {
	ScheduleID int    `json:"schedule_id"`
	Change     string `json:"change"` // created, updated, deleted, state
}

// NotifyScheduleChanged tells player sessions to re-read the schedule from
// the store. Sessions subscribe to the broadcast topic and drop events for
// schedules not assigned to them; the payload carries no schedule data.
func NotifyScheduleChanged(scheduleID int, change string) {
	clientMutex.RLock()
	client := mqttClient
	clientMutex.RUnlock()
	if client == nil {
		return
	}

	payload, err := json.Marshal(scheduleChangeEvent{ScheduleID: scheduleID, Change: change})
	if err != nil {
		return
	}
	token := client.Publish("schedules/changed", 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Int("schedule_id", scheduleID).Msg("failed to publish schedule change")
	}
}

// SendInsertCommand pushes a play command to one player session's audio
// device.
func SendInsertCommand(sessionID int, message []byte) error {
	clientMutex.RLock()
	client := mqttClient
	clientMutex.RUnlock()
	if client == nil {
		return fmt.Errorf("MQTT client not connected")
	}

	topic := fmt.Sprintf("player/%d/insert", sessionID)
	token := client.Publish(topic, 1, false, message)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to send insert command to session %d: %v", sessionID, token.Error())
	}
	return nil
}

// CleanupMQTT disconnects the main MQTT client.
func CleanupMQTT() {
	clientMutex.Lock()
	defer clientMutex.Unlock()

	if mqttClient != nil {
		mqttClient.Disconnect(250)
		mqttClient = nil
		log.Info().Msg("MQTT client disconnected")
	}
}
