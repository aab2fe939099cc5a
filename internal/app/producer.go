package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/TranDung6129/real-time-displacement/internal/config"
	"github.com/TranDung6129/real-time-displacement/internal/export"
	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
	"github.com/TranDung6129/real-time-displacement/internal/wit"
)

// pipelineOptions maps the loaded configuration onto pipeline options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Dt:                  cfg.Dt(),
		SampleFrameSize:     cfg.SampleFrameSize,
		CalcFrameMultiplier: cfg.CalcFrameMultiplier,
		ForgettingVel:       cfg.RLSForgettingVel,
		ForgettingDisp:      cfg.RLSForgettingDisp,
		WarmupFrames:        cfg.WarmupFrames,
		HistoryLimit:        cfg.HistoryPoints,
		SpectralPoints:      cfg.FFTPoints,
	}
}

// RunProducer reads accelerometer samples from the configured source,
// runs them through the kinematic pipeline and publishes one
// SegmentMessage per axis for every completed frame.
func RunProducer() error {
	log.Println("starting displacement producer (sensor → MQTT)")

	cfg := config.Get()

	// --- choose sample source (mock vs serial sensor) ---
	var src wit.SampleSource
	if cfg.UseMockSensor {
		log.Println("using mock accelerometer source")
		src = wit.NewMockSource(time.Duration(float64(time.Second) / cfg.SampleRateHz))
	} else {
		log.Printf("opening serial sensor on %s @ %d baud", cfg.SerialPort, cfg.SerialBaudRate)
		var err error
		src, err = wit.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate, cfg.SampleRateHz)
		if err != nil {
			return err
		}
	}
	defer src.Close()

	pl, err := pipeline.New(pipelineOptions(cfg))
	if err != nil {
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	// --- optional CSV recording ---
	var rec *export.Recorder
	if cfg.CSVOutputDir != "" {
		path := export.SessionFilename(cfg.CSVOutputDir)
		var err error
		rec, err = export.NewRecorder(path)
		if err != nil {
			return err
		}
		defer rec.Close()
		log.Printf("recording session to %s", path)
	}

	frames := 0
	for {
		s, err := src.Next()
		if err != nil {
			log.Printf("sample source error: %v", err)
			return err
		}

		res, ok := pl.Push(s)
		if !ok {
			continue
		}

		for _, a := range pipeline.Axes {
			msg := newSegmentMessage(res, a)
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Printf("json marshal error (%s): %v", a, err)
				continue
			}
			topic := KinematicsTopic(cfg.MQTTTopicPrefix, a)
			if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (%s): %v", topic, token.Error())
			}
		}

		if rec != nil {
			if err := rec.WriteResult(res); err != nil {
				log.Printf("csv write error: %v", err)
			}
		}

		frames++
		if frames%50 == 0 {
			z := res.Axes[pipeline.AxisZ]
			last := len(res.Time) - 1
			log.Printf("frame %d: t=%.2fs | Z acc=%.4f vel=%.4f disp=%.4f | warmed=%v",
				frames, res.Time[last], z.Acc[last], z.Vel[last], z.Disp[last], res.WarmedUp)
		}
	}
}
