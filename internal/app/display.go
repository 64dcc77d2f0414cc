package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/config"
)

// displayData holds the latest frame for the OLED.
type displayData struct {
	mu        sync.RWMutex
	frame     FrameMsg
	haveFrame bool
}

func (d *displayData) set(f FrameMsg) {
	d.mu.Lock()
	d.frame, d.haveFrame = f, true
	d.mu.Unlock()
}

func (d *displayData) get() (FrameMsg, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame, d.haveFrame
}

// RunDisplay shows replay progress and the current pose on an SSD1306
// OLED, fed by the frames the replay server publishes.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), splashImage(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicFrame, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f FrameMsg
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("display: frame unmarshal error: %v", err)
			return
		}
		data.set(f)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicFrame)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	log.Println("display: starting update loop")
	for {
		select {
		case <-sigCh:
			log.Println("display: shutting down")
			return nil
		case <-ticker.C:
			f, ok := data.get()
			if err := dev.Draw(dev.Bounds(), statusImage(f, ok), image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

// statusImage lays out four 13px lines: row, pass/progress, roll/pitch, yaw.
func statusImage(f FrameMsg, haveData bool) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("Replay")
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
		return img
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawString(fmt.Sprintf("Row %d/%d", f.Row, f.Progress.Total))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawString(fmt.Sprintf("Pass %d %3d%%", f.Pass, f.Progress.Percent))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawString(fmt.Sprintf("R%s P%s", angle(f.Pose.Roll), angle(f.Pose.Pitch)))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawString(fmt.Sprintf("Y%s", angle(f.Pose.Yaw)))
	return img
}

func angle(v chart.Value) string {
	f := float64(v)
	if math.IsNaN(f) {
		return "    --"
	}
	return fmt.Sprintf("%6.1f", f)
}

func splashImage() *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("Inertial Replay")

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawString("Waiting for")

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawString("frames")
	return img
}
