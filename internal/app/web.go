// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/config"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/playback"
	"github.com/relabs-tech/inertial_replay/internal/scene"
	"github.com/relabs-tech/inertial_replay/internal/timeline"
)

const maxUploadSize = 64 << 20

// modelState tracks the asynchronous 3D model load.
type modelState struct {
	mu      sync.RWMutex
	loading bool
	res     scene.LoadResult
}

func (m *modelState) set(res scene.LoadResult) {
	m.mu.Lock()
	m.loading, m.res = false, res
	m.mu.Unlock()
}

func (m *modelState) get() (bool, scene.LoadResult) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading, m.res
}

// Replay is the replay server: row source, scheduler, model loader and the
// browser-facing outputs.
type Replay struct {
	cfg      *config.Config
	timeline *timeline.Timeline
	source   *timeline.Source
	sched    *playback.Scheduler
	hub      *Hub
	web      *webSink
	model    modelState
}

// NewReplay wires a replay server. Extra renderers (the MQTT publisher)
// receive every advance alongside the browsers.
func NewReplay(cfg *config.Config, extra ...playback.Renderer) *Replay {
	r := &Replay{
		cfg:      cfg,
		timeline: &timeline.Timeline{},
	}
	r.web = newWebSink(nil)
	r.hub = NewHub(r.web.greeting)
	r.web.hub = r.hub

	renderers := append(playback.Renderers{r.web}, extra...)
	r.sched = playback.NewScheduler(playback.Options{
		Timeline:      r.timeline,
		Renderer:      renderers,
		Charts:        r.web,
		VisitLastRow:  cfg.PlaybackVisitLastRow,
		FrameInterval: time.Duration(cfg.FrameInterval) * time.Millisecond,
	})

	r.source = timeline.NewSource(r.timeline, cfg.TimelineAppend)
	r.source.OnLoad(r.sched.Load)
	r.model.loading = true
	return r
}

// LoadModel starts loading the 3D model; playback waits for it.
func (r *Replay) LoadModel(ctx context.Context) {
	results := scene.LoadAsync(ctx, r.cfg.ModelMTLPath, r.cfg.ModelOBJPath)
	go func() {
		res := <-results
		r.setModel(res)
	}()
}

func (r *Replay) setModel(res scene.LoadResult) {
	r.model.set(res)
	r.sched.SetModelReady(res.OK())
}

// Run drives the hub and the scheduler until ctx is done.
func (r *Replay) Run(ctx context.Context) error {
	go r.hub.Run(ctx)
	return r.sched.Run(ctx)
}

// Handler returns the HTTP API, websocket and static files.
func (r *Replay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/timeline", r.handleTimeline)
	mux.HandleFunc("POST /api/animate", r.handleAnimate)
	mux.HandleFunc("GET /api/status", r.handleStatus)
	mux.HandleFunc("GET /api/orientation", r.handleOrientation)
	mux.HandleFunc("GET /api/series", r.handleSeries)
	mux.HandleFunc("GET /api/charts/{file}", r.handleChart)
	mux.HandleFunc("GET /api/model", r.handleModel)
	mux.Handle("GET /ws", r.hub)
	mux.Handle("/", http.FileServer(http.Dir(r.cfg.WebStaticDir)))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("replay: json encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (r *Replay) handleTimeline(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadSize)

	var src io.Reader = req.Body
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := req.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing file: %v", err))
			return
		}
		defer f.Close()
		src = f
	}

	n, err := r.source.Load(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   n,
		"total":  r.timeline.Len(),
		"append": r.cfg.TimelineAppend,
	})
}

func (r *Replay) handleAnimate(w http.ResponseWriter, _ *http.Request) {
	if !r.source.IsReady() {
		writeError(w, http.StatusConflict, "no timeline loaded")
		return
	}
	r.sched.Start()
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": true})
}

type statusMsg struct {
	Playback       playback.Status `json:"playback"`
	AnimateEnabled bool            `json:"animate_enabled"`
	Model          string          `json:"model"`
	ModelError     string          `json:"model_error,omitempty"`
	Clients        int             `json:"clients"`
}

func (r *Replay) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := statusMsg{
		Playback:       r.sched.Status(),
		AnimateEnabled: r.source.IsReady(),
		Clients:        r.hub.Clients(),
	}
	loading, res := r.model.get()
	switch {
	case loading:
		st.Model = "loading"
	case res.OK():
		st.Model = "ready"
	default:
		st.Model = "failed"
		if res.Err != nil {
			st.ModelError = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (r *Replay) handleOrientation(w http.ResponseWriter, _ *http.Request) {
	f, ok := r.web.latestFrame()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, f.Pose)
}

func (r *Replay) handleSeries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, seriesMessage(r.web.snapshot()))
}

func (r *Replay) handleChart(w http.ResponseWriter, req *http.Request) {
	file := req.PathValue("file")
	ext := path.Ext(file)
	spec, ok := chart.Lookup(strings.TrimSuffix(file, ext))
	if !ok || !spec.Enabled {
		http.NotFound(w, req)
		return
	}

	var svg bool
	switch ext {
	case ".png":
		w.Header().Set("Content-Type", "image/png")
	case ".svg":
		svg = true
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		writeError(w, http.StatusBadRequest, "chart format must be .png or .svg")
		return
	}

	size := chart.Size{Width: r.cfg.ChartWidth, Height: r.cfg.ChartHeight}
	var buf bytes.Buffer
	if err := chart.Render(&buf, spec, r.web.snapshot(), size, svg); err != nil {
		w.Header().Del("Content-Type")
		if errors.Is(err, chart.ErrNoPoints) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("replay: chart %s: %v", file, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Write(buf.Bytes())
}

func (r *Replay) handleModel(w http.ResponseWriter, _ *http.Request) {
	loading, res := r.model.get()
	if loading {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
		return
	}
	if !res.OK() {
		msg := "model unavailable"
		if res.Err != nil {
			msg = res.Err.Error()
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, res.Model)
}

// RunReplay serves the browser replay. A non-empty logPath is loaded at
// startup; demo loads the synthetic log instead.
func RunReplay(logPath string, demo bool) error {
	cfg := config.Get()

	var extra []playback.Renderer
	if cfg.MQTTEnabled {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientIDReplay)

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer client.Disconnect(250)
		log.Printf("replay: connected to MQTT broker at %s", cfg.MQTTBroker)
		extra = append(extra, &mqttSink{client: client, frameTopic: cfg.TopicFrame, poseTopic: cfg.TopicPose})
	}

	r := NewReplay(cfg, extra...)

	switch {
	case demo:
		r.source.LoadRecords(orientation.MockLog(mockRows, mockStep))
	case logPath != "":
		f, err := os.Open(logPath)
		if err != nil {
			return err
		}
		_, err = r.source.Load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", logPath, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.LoadModel(ctx)
	go r.Run(ctx)

	if cfg.MDNSEnabled {
		ad, err := Advertise(cfg.MDNSInstance, cfg.WebServerPort)
		if err != nil {
			log.Printf("replay: mDNS disabled: %v", err)
		} else {
			defer ad.Shutdown()
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: r.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("web server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("replay: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
