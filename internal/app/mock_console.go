// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_replay/internal/config"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/playback"
	"github.com/relabs-tech/inertial_replay/internal/timeline"
)

// Synthetic log used when no file is given.
const (
	mockRows = 500
	mockStep = 0.02 // seconds
)

// consoleRenderer prints each accepted advance.
type consoleRenderer struct {
	w io.Writer
}

func (c consoleRenderer) Apply(a playback.Advance) {
	fmt.Fprintln(c.w, formatFrame(frameMessage(a)))
}

func (c consoleRenderer) Render(playback.RenderReason, orientation.Scene) {}

// loadTimeline fills a timeline from path, or from a synthetic log when
// path is empty.
func loadTimeline(path string) (*timeline.Timeline, error) {
	tl := &timeline.Timeline{}
	if path == "" {
		tl.Replace(orientation.MockLog(mockRows, mockStep))
		log.Printf("replay: using synthetic log (%d rows)", mockRows)
		return tl, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := timeline.NewSource(tl, false).Load(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// runHeadless replays tl into r until interrupted. There is no 3D model,
// so playback starts straight away.
func runHeadless(tl *timeline.Timeline, r playback.Renderer) error {
	cfg := config.Get()
	sched := playback.NewScheduler(playback.Options{
		Timeline:      tl,
		Renderer:      r,
		VisitLastRow:  cfg.PlaybackVisitLastRow,
		FrameInterval: time.Duration(cfg.FrameInterval) * time.Millisecond,
	})
	sched.SetModelReady(true)
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// RunConsole replays a log (or the synthetic one) to stdout.
func RunConsole(path string) error {
	tl, err := loadTimeline(path)
	if err != nil {
		return err
	}
	return runHeadless(tl, consoleRenderer{w: os.Stdout})
}

// RunProducer replays a log (or the synthetic one) to MQTT without the
// web server.
func RunProducer(path string) error {
	cfg := config.Get()

	tl, err := loadTimeline(path)
	if err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDReplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	sink := &mqttSink{client: client, frameTopic: cfg.TopicFrame, poseTopic: cfg.TopicPose}
	return runHeadless(tl, sink)
}
