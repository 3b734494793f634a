package stream

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/audiospace/atomspace/internal/engine"
	"github.com/audiospace/atomspace/pkg/framework/debug"
)

// Controller is the part of the engine the API drives
type Controller interface {
	Status() engine.Status
	Tempo() float64
	SetTempo(bpm float64)
	SetMasterGain(db float64)
	SetParam(index int, name string, value float64) error
	SetParamText(index int, name, text string) error
	ToggleVoice(index int) (bool, error)
	Trigger(index int) error
}

// API serves status and control endpoints
type API struct {
	ctl         Controller
	broadcaster *Broadcaster
	webrtc      *WebRTCHandler
	logger      *debug.Logger
}

// NewAPI creates the control API. webrtc may be nil.
func NewAPI(ctl Controller, b *Broadcaster, webrtc *WebRTCHandler, logger *debug.Logger) *API {
	if logger == nil {
		logger = debug.Default()
	}
	return &API{ctl: ctl, broadcaster: b, webrtc: webrtc, logger: logger}
}

// Register adds the API routes to mux
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/tempo", a.handleTempo)
	mux.HandleFunc("/api/master", a.handleMaster)
	mux.HandleFunc("/api/voice", a.handleVoice)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	peers := 0
	if a.webrtc != nil {
		peers = a.webrtc.PeerCount()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":           a.ctl.Status(),
		"http_listeners":   a.broadcaster.ListenerCount() - peers,
		"webrtc_listeners": peers,
		"frames":           a.broadcaster.Frames(),
	})
}

func (a *API) handleTempo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		BPM float64 `json:"bpm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BPM <= 0 {
		http.Error(w, "invalid bpm", http.StatusBadRequest)
		return
	}
	a.ctl.SetTempo(req.BPM)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tempo": a.ctl.Tempo()})
}

func (a *API) handleMaster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		GainDB *float64 `json:"gain_db"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GainDB == nil {
		http.Error(w, "invalid gain", http.StatusBadRequest)
		return
	}
	a.ctl.SetMasterGain(*req.GainDB)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "gain_db": *req.GainDB})
}

// voiceRequest changes one voice: a parameter (value or text), its active
// state, or its manual trigger
type voiceRequest struct {
	Index   int      `json:"index"`
	Param   string   `json:"param"`
	Value   *float64 `json:"value"`
	Text    string   `json:"text"`
	Toggle  bool     `json:"toggle"`
	Trigger bool     `json:"trigger"`
}

func (a *API) handleVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	resp := map[string]any{"ok": true, "index": req.Index}
	var err error
	switch {
	case req.Toggle:
		var active bool
		active, err = a.ctl.ToggleVoice(req.Index)
		resp["active"] = active
	case req.Trigger:
		err = a.ctl.Trigger(req.Index)
	case req.Param != "" && req.Text != "":
		err = a.ctl.SetParamText(req.Index, req.Param, req.Text)
	case req.Param != "" && req.Value != nil:
		err = a.ctl.SetParam(req.Index, req.Param, *req.Value)
	default:
		http.Error(w, "nothing to change", http.StatusBadRequest)
		return
	}

	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrNoVoice) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	a.logger.Debug("api: voice %d updated", req.Index)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
