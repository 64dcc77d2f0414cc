package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_replay/internal/config"
)

// RunConsoleMQTT prints every frame and pose the replay server publishes.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	frameToken := client.Subscribe(cfg.TopicFrame, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f FrameMsg
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: frame unmarshal error: %v", err)
			return
		}
		fmt.Println(formatFrame(f))
	})
	frameToken.Wait()
	if frameToken.Error() != nil {
		return frameToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicFrame)

	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p PoseMsg
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		fmt.Println(formatPose(p))
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatFrame(f FrameMsg) string {
	return fmt.Sprintf(
		"[FRAME] row=%5d pass=%d %3d%%  t=%10.3f dt=%6.3f  a=%7.3f %7.3f %7.3f  g=%8.2f %8.2f %8.2f  q=%6.3f %6.3f %6.3f %6.3f",
		f.Row, f.Pass, f.Progress.Percent,
		float64(f.Time), float64(f.TimeDiff),
		float64(f.Accel[0]), float64(f.Accel[1]), float64(f.Accel[2]),
		float64(f.Gyro[0]), float64(f.Gyro[1]), float64(f.Gyro[2]),
		float64(f.Quat[0]), float64(f.Quat[1]), float64(f.Quat[2]), float64(f.Quat[3]),
	)
}

func formatPose(p PoseMsg) string {
	return fmt.Sprintf(
		"[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f",
		float64(p.Roll), float64(p.Pitch), float64(p.Yaw),
	)
}
