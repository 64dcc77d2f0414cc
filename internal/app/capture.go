package app

import (
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_replay/internal/capture"
	"github.com/relabs-tech/inertial_replay/internal/config"
	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// captureTopic is where live lines from device are published.
func captureTopic(prefix, device string) string {
	return prefix + "/" + device + "/movement_sensor_data"
}

// recordSamples copies samples from src into w until src is exhausted.
// When pub is set every sample is also published to topic as a CSV line.
// A source that ends with io.EOF or os.ErrClosed ends cleanly.
func recordSamples(src imu.RawSource, w *capture.Writer, pub publisher, topic string) error {
	for {
		raw, err := src.NextRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
		if err := w.Write(raw); err != nil {
			return err
		}
		if pub != nil {
			line := strings.Join(capture.Fields(raw), ",")
			token := pub.Publish(topic, 0, false, line)
			if !token.WaitTimeout(publishTimeout) {
				log.Printf("capture: publish to %s timed out", topic)
			} else if err := token.Error(); err != nil {
				log.Printf("capture: publish error: %v", err)
			}
		}
	}
}

// RunCapture records the serial device into a new capture log until
// interrupted.
func RunCapture() error {
	cfg := config.Get()

	dev, err := capture.OpenDevice(cfg.SerialPort, uint(cfg.SerialBaudRate))
	if err != nil {
		return err
	}
	log.Printf("capture: connected to %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)

	w, path, err := capture.Create(cfg.CaptureDir, cfg.CaptureFlushEvery, time.Now())
	if err != nil {
		dev.Close()
		return err
	}
	log.Printf("capture: writing to %s", path)

	var pub publisher
	topic := captureTopic(cfg.TopicCapture, dev.Name)
	if cfg.MQTTEnabled {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientIDCapture)

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("capture: MQTT disabled: %v", token.Error())
		} else {
			defer client.Disconnect(250)
			pub = client
			log.Printf("capture: publishing to %s", topic)
		}
	}

	// Closing the device unblocks the reader.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("capture: stopping")
		if err := dev.Close(); err != nil {
			log.Printf("capture: error closing device: %v", err)
		}
	}()

	lr := capture.NewLineReader(dev)
	err = recordSamples(lr, w, pub, topic)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	log.Printf("capture: %d samples written to %s (%d invalid lines)", w.Rows(), path, lr.Invalid())
	return err
}
