package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/TranDung6129/real-time-displacement/internal/analysis"
	"github.com/TranDung6129/real-time-displacement/internal/config"
	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// webState caches the latest segment per axis plus a bounded tail of raw
// acceleration samples used by the spectrum and stats endpoints.
type webState struct {
	mu       sync.RWMutex
	latest   [3]SegmentMessage
	have     [3]bool
	accTail  [3][]float64
	tailSize int

	connMu sync.Mutex
	conns  map[*websocket.Conn]bool
}

func newWebState(tailSize int) *webState {
	return &webState{
		tailSize: tailSize,
		conns:    make(map[*websocket.Conn]bool),
	}
}

func (st *webState) update(a pipeline.Axis, s SegmentMessage) {
	st.mu.Lock()
	st.latest[a] = s
	st.have[a] = true
	st.accTail[a] = append(st.accTail[a], s.Acc...)
	if n := len(st.accTail[a]); n > st.tailSize {
		st.accTail[a] = st.accTail[a][n-st.tailSize:]
	}
	st.mu.Unlock()
}

func (st *webState) broadcast(payload []byte) {
	st.connMu.Lock()
	defer st.connMu.Unlock()
	for conn := range st.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(st.conns, conn)
		}
	}
}

func axisByName(name string) (pipeline.Axis, bool) {
	for _, a := range pipeline.Axes {
		if a.String() == name {
			return a, true
		}
	}
	return 0, false
}

func parseAxis(r *http.Request) (pipeline.Axis, error) {
	name := strings.ToLower(r.URL.Query().Get("axis"))
	if name == "" {
		name = "z"
	}
	a, ok := axisByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown axis %q", name)
	}
	return a, nil
}

// handleAxisKinematics serves the latest segment for a single axis,
// routed as /api/kinematics/{axis}.
func (st *webState) handleAxisKinematics(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("axis"))
	a, ok := axisByName(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown axis %q", name), http.StatusBadRequest)
		return
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	if !st.have[a] {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st.latest[a]); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// RunWeb subscribes to the kinematics topics and serves the latest data
// over an HTTP JSON API and a websocket stream.
func RunWeb() error {
	cfg := config.Get()
	st := newWebState(2 * cfg.FFTPoints)

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to all axis topics and cache the latest segment
	for _, a := range pipeline.Axes {
		axis := a
		topic := KinematicsTopic(cfg.MQTTTopicPrefix, axis)
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s SegmentMessage
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("MQTT payload unmarshal error: %v", err)
				return
			}
			st.update(axis, s)
			st.broadcast(msg.Payload())
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("subscribed to MQTT topic %s", topic)
	}

	// 3) JSON API: latest segments for all axes
	http.HandleFunc("/api/kinematics", func(w http.ResponseWriter, r *http.Request) {
		st.mu.RLock()
		defer st.mu.RUnlock()

		out := make(map[string]SegmentMessage)
		for _, a := range pipeline.Axes {
			if st.have[a] {
				out[a.String()] = st.latest[a]
			}
		}
		if len(out) == 0 {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) Latest segment for a single axis
	http.HandleFunc("/api/kinematics/{axis}", st.handleAxisKinematics)

	// 5) Amplitude spectrum of the newest raw acceleration samples
	http.HandleFunc("/api/spectrum", func(w http.ResponseWriter, r *http.Request) {
		a, err := parseAxis(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		st.mu.RLock()
		tail := append([]float64(nil), st.accTail[a]...)
		st.mu.RUnlock()

		freqs, amps := analysis.Spectrum(tail, cfg.Dt(), cfg.FFTPoints, analysis.WindowHann)
		if freqs == nil {
			http.Error(w, "not enough samples yet", http.StatusServiceUnavailable)
			return
		}

		dom, _ := analysis.DominantFrequency(freqs, amps, 0.5)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"axis":         a.String(),
			"frequencies":  freqs,
			"amplitudes":   amps,
			"dominantFreq": dom,
		}); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 6) Descriptive statistics of the newest raw acceleration samples
	http.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		a, err := parseAxis(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		st.mu.RLock()
		tail := append([]float64(nil), st.accTail[a]...)
		st.mu.RUnlock()

		desc, ok := analysis.Describe(tail)
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"axis":  a.String(),
			"stats": desc,
		}); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 7) Websocket stream of raw segment payloads
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}

		st.connMu.Lock()
		st.conns[conn] = true
		st.connMu.Unlock()
		log.Printf("websocket client connected (%s)", r.RemoteAddr)

		// Drain reads so close frames are processed; broadcast happens
		// from the MQTT callback.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					st.connMu.Lock()
					delete(st.conns, conn)
					st.connMu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// 8) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
