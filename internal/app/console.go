package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/TranDung6129/real-time-displacement/internal/config"
	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
)

// RunConsole subscribes to the per-axis kinematics topics and prints a
// one-line summary for every received segment.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	for _, a := range pipeline.Axes {
		topic := KinematicsTopic(cfg.MQTTTopicPrefix, a)
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s SegmentMessage
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: segment unmarshal error: %v", err)
				return
			}
			if len(s.Time) == 0 {
				return
			}

			last := len(s.Time) - 1
			warm := " "
			if !s.WarmedUp {
				warm = "~"
			}
			fmt.Printf(
				"[%s]%s t=%8.2fs  acc=%9.4f m/s²  vel=%9.4f m/s  disp=%9.4f m\n",
				s.Axis, warm, s.Time[last], s.Acc[last], s.Vel[last], s.Disp[last],
			)
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", topic)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
