package app

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/playback"
	"github.com/relabs-tech/inertial_replay/internal/series"
)

// webSink keeps the latest replay state for the HTTP API and streams it
// to websocket clients.
type webSink struct {
	hub *Hub

	mu        sync.RWMutex
	scene     sceneMsg
	frame     FrameMsg
	haveFrame bool
	snap      series.Snapshot
	plots     []chart.Plot
}

func newWebSink(hub *Hub) *webSink {
	return &webSink{hub: hub, scene: sceneMessage(orientation.NewScene())}
}

func (w *webSink) Apply(a playback.Advance) {
	scene := sceneMessage(a.Scene)
	scene.Row, scene.Pass = a.Row, a.Pass
	frame := frameMessage(a)

	w.mu.Lock()
	w.scene, w.frame, w.haveFrame = scene, frame, true
	w.mu.Unlock()

	w.send("scene", scene)
	w.send("progress", a.Progress)
}

// Render forwards paced frames only; browsers redraw continuously on
// their own animation loop.
func (w *webSink) Render(reason playback.RenderReason, _ orientation.Scene) {
	if reason != playback.RenderPaced {
		return
	}
	w.mu.RLock()
	row := w.scene.Row
	w.mu.RUnlock()
	w.send("render", map[string]int{"row": row})
}

func (w *webSink) Redraw(s series.Snapshot) {
	var plots []chart.Plot
	if w.hub == nil || w.hub.Clients() > 0 {
		plots = chart.BuildAll(s)
	}

	w.mu.Lock()
	w.snap = s
	w.plots = plots
	w.mu.Unlock()

	for _, p := range plots {
		w.send("plot", p)
	}
}

func (w *webSink) send(msgType string, data any) {
	if w.hub == nil {
		return
	}
	msg, err := encode(msgType, data)
	if err != nil {
		log.Printf("replay: %s encode error: %v", msgType, err)
		return
	}
	w.hub.Broadcast(msg)
}

// greeting brings a newly connected client up to date.
func (w *webSink) greeting() [][]byte {
	w.mu.RLock()
	scene, frame, have, snap := w.scene, w.frame, w.haveFrame, w.snap
	w.mu.RUnlock()

	var out [][]byte
	add := func(t string, v any) {
		if msg, err := encode(t, v); err == nil {
			out = append(out, msg)
		}
	}
	add("scene", scene)
	if have {
		add("progress", frame.Progress)
	}
	for _, p := range chart.BuildAll(snap) {
		add("plot", p)
	}
	return out
}

func (w *webSink) latestFrame() (FrameMsg, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame, w.haveFrame
}

func (w *webSink) snapshot() series.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snap
}

// publisher is the part of mqtt.Client the frame sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

const publishTimeout = 100 * time.Millisecond

// mqttSink publishes every accepted advance as a frame and a pose.
type mqttSink struct {
	client     publisher
	frameTopic string
	poseTopic  string
}

func (m *mqttSink) Apply(a playback.Advance) {
	frame := frameMessage(a)

	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("replay: frame marshal error: %v", err)
		return
	}
	m.publish(m.frameTopic, false, payload)

	payload, err = json.Marshal(frame.Pose)
	if err != nil {
		log.Printf("replay: pose marshal error: %v", err)
		return
	}
	m.publish(m.poseTopic, true, payload)
}

func (m *mqttSink) Render(playback.RenderReason, orientation.Scene) {}

func (m *mqttSink) publish(topic string, retained bool, payload []byte) {
	token := m.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("replay: publish to %s timed out", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("replay: publish to %s error: %v", topic, err)
	}
}
