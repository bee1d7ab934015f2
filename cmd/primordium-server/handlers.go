package main

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/primordialab/primordium/internal/engine"
	enginenotifiers "github.com/primordialab/primordium/internal/engine/notifiers"
)

// extractWorldID extracts the world ID from a path like "/world/{worldID}/..."
// Returns the world ID and the remaining path, or empty string if not found
func extractWorldID(path string) (engine.WorldID, string) {
	if !strings.HasPrefix(path, "/world/") {
		return "", ""
	}

	// Remove "/world/" prefix
	rest := path[7:]

	// Find the next "/"
	idx := strings.Index(rest, "/")
	if idx == -1 {
		// No more path segments, the whole thing is the world ID
		return engine.WorldID(rest), ""
	}

	worldID := engine.WorldID(rest[:idx])
	remainingPath := rest[idx:]
	return worldID, remainingPath
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

// POST /world/{worldID}
// Body: { "width": 2000, "height": 1200, "seed": 42, "library": { ... } }
// Creates a new world with the given ID; the library is optional and
// defaults to the built-in chemistry.
type createWorldRequest struct {
	Width   float64               `json:"width,omitempty"`
	Height  float64               `json:"height,omitempty"`
	Seed    int64                 `json:"seed,omitempty"`
	Library *engine.LibraryConfig `json:"library,omitempty"`
}

func (s *Server) handleCreateWorld(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	worldID, _ := extractWorldID(r.URL.Path)
	if worldID == "" {
		http.Error(w, "world ID is required in path: /world/{worldID}", http.StatusBadRequest)
		return
	}

	var req createWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg := engine.DefaultConfig()
	cfg.Logger = &engineLoggerAdapter{logger: s.logger}
	cfg.Width = req.Width
	cfg.Height = req.Height
	cfg.Seed = req.Seed
	if req.Library != nil {
		elements, templates, err := engine.BuildLibraryFromConfig(*req.Library)
		if err != nil {
			http.Error(w, "cannot build library: "+err.Error(), http.StatusBadRequest)
			return
		}
		cfg.Elements = elements
		cfg.Templates = templates
	}

	world, err := s.manager.CreateWorld(worldID, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.attachWorld(world)
	s.logger.Infof("World created: world_id=%s seed=%d", worldID, world.Seed())

	writeJSON(w, http.StatusCreated, map[string]any{"world_id": worldID, "seed": world.Seed()})
}

// DELETE /world/{worldID}
func (s *Server) handleDeleteWorld(w http.ResponseWriter, r *http.Request) {
	worldID, _ := extractWorldID(r.URL.Path)
	if worldID == "" {
		http.Error(w, "world ID is required in path: /world/{worldID}", http.StatusBadRequest)
		return
	}

	if err := s.manager.DeleteWorld(worldID); err != nil {
		s.logger.Warnf("Failed to delete world: world_id=%s error=%v", worldID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("World deleted: world_id=%s", worldID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("world deleted"))
}

// getWorld resolves the world from the request path, writing the error
// response itself when the world is missing.
func (s *Server) getWorld(w http.ResponseWriter, r *http.Request) (*engine.World, bool) {
	worldID, _ := extractWorldID(r.URL.Path)
	if worldID == "" {
		http.Error(w, "world ID is required in path: /world/{worldID}/...", http.StatusBadRequest)
		return nil, false
	}
	world, exists := s.manager.GetWorld(worldID)
	if !exists {
		http.Error(w, "world not found", http.StatusNotFound)
		return nil, false
	}
	return world, true
}

// POST /world/{worldID}/atoms
// Body: { "symbol": "H", "x": 100, "y": 200 }
type addAtomRequest struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handleAddAtom(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	var req addAtomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := world.AddAtom(engine.Symbol(req.Symbol), engine.Vec2{X: req.X, Y: req.Y})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// DELETE /world/{worldID}/atoms/{atomID}
func (s *Server) handleRemoveAtom(w http.ResponseWriter, r *http.Request, atomID string) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	if err := world.RemoveAtom(engine.AtomID(atomID)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("atom removed"))
}

// POST /world/{worldID}/bonds
// Body: { "a": "...", "b": "...", "order": 1 }
type addBondRequest struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Order int    `json:"order"`
}

func (s *Server) handleAddBond(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	var req addBondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Order == 0 {
		req.Order = 1
	}

	id, err := world.AddBond(engine.AtomID(req.A), engine.AtomID(req.B), req.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// DELETE /world/{worldID}/bonds/{bondID}
func (s *Server) handleRemoveBond(w http.ResponseWriter, r *http.Request, bondID string) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	if err := world.RemoveBond(engine.BondID(bondID)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("bond removed"))
}

// POST /world/{worldID}/intentions
// Body: { "kind": "molecule", "x": 500, "y": 300, "radius": 200, "formula": "H2O" }
// or:   { "kind": "polymer", "x": 500, "y": 300, "radius": 300, "formula": "CH4", "count": 3 }
type addIntentionRequest struct {
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Formula string  `json:"formula"`
	Count   int     `json:"count,omitempty"`
}

func (s *Server) handleAddIntention(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	var req addIntentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	pos := engine.Vec2{X: req.X, Y: req.Y}
	var id engine.IntentionID
	var err error
	switch req.Kind {
	case "molecule", "":
		id, err = world.AddMoleculeIntention(pos, req.Radius, req.Formula)
	case "polymer":
		id, err = world.AddPolymerIntention(pos, req.Radius, req.Formula, req.Count)
	default:
		http.Error(w, "unknown intention kind: "+req.Kind, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// DELETE /world/{worldID}/intentions/{intentionID}
func (s *Server) handleRemoveIntention(w http.ResponseWriter, r *http.Request, intentionID string) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	if err := world.RemoveIntention(engine.IntentionID(intentionID)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("intention removed"))
}

// POST /world/{worldID}/select
// Body: { "type": "atom"|"molecule"|"polymer", "id": "...", "selected": true }
type selectRequest struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Selected  bool   `json:"selected"`
	Highlight bool   `json:"highlight,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Type {
	case "atom":
		if req.Highlight {
			err = world.SetAtomHighlighted(engine.AtomID(req.ID), req.Selected)
		} else {
			err = world.SetAtomSelected(engine.AtomID(req.ID), req.Selected)
		}
	case "molecule":
		if req.Highlight {
			err = world.SetMoleculeHighlighted(engine.MoleculeID(req.ID), req.Selected)
		} else {
			err = world.SetMoleculeSelected(engine.MoleculeID(req.ID), req.Selected)
		}
	case "polymer":
		err = world.SetPolymerSelected(engine.PolymerID(req.ID), req.Selected)
	default:
		http.Error(w, "unknown selection type: "+req.Type, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /world/{worldID}/tick
// Manually trigger steps (useful for testing/debugging when auto-running is disabled)
// Query param: steps (default: 1)
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	steps := 1
	if stepsStr := r.URL.Query().Get("steps"); stepsStr != "" {
		if n, err := strconv.Atoi(stepsStr); err == nil && n > 0 && n <= 100000 {
			steps = n
		} else {
			http.Error(w, "invalid steps: must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	for range steps {
		world.Step(s.tickDT)
	}

	writeJSON(w, http.StatusOK, map[string]any{"tick": world.Tick()})
}

// POST /world/{worldID}/start
// Start the world auto-running with the specified interval (in milliseconds)
// Query param: interval (default: 33ms)
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	interval := 33 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		if ms, err := strconv.Atoi(intervalStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		} else {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
	}

	world.Run(interval, s.tickDT)
	s.logger.Infof("World started: world_id=%s interval=%v", world.ID(), interval)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("world started"))
}

// POST /world/{worldID}/stop
// Stop the world auto-running
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	world.Stop()
	s.logger.Infof("World stopped: world_id=%s", world.ID())

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("world stopped"))
}

// POST /world/{worldID}/snapshot
// Triggers a synchronous snapshot save into the snapshot directory
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(s.snapshotDir, string(world.ID())+".json")
	if err := world.WriteSnapshotFile(path); err != nil {
		s.logger.Errorf("Failed to save snapshot: world_id=%s error=%v", world.ID(), err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debugf("Snapshot saved: world_id=%s path=%s", world.ID(), path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
}

// GET /world/{worldID}/snapshot
// Returns the current world state as a snapshot JSON
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, world.Snapshot())
}

// POST /world/{worldID}/restore
// Body: snapshot JSON produced by GET /world/{worldID}/snapshot
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	var snapshot engine.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		http.Error(w, "invalid snapshot json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := world.Restore(snapshot); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("world restored"))
}

// GET /world/{worldID}/discoveries
func (s *Server) handleWorldDiscoveries(w http.ResponseWriter, r *http.Request) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	if s.catalog == nil {
		http.Error(w, "catalog not configured", http.StatusInternalServerError)
		return
	}

	discoveries, err := s.catalog.ForWorld(string(world.ID()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"discoveries": discoveries})
}

// handleWorldRoutes routes requests to world-specific handlers
// Handles paths like /world/{worldID}/atoms, /world/{worldID}/tick, etc.
func (s *Server) handleWorldRoutes(w http.ResponseWriter, r *http.Request) {
	worldID, remainingPath := extractWorldID(r.URL.Path)
	if worldID == "" {
		http.Error(w, "world ID is required in path: /world/{worldID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "" && r.Method == http.MethodPost:
		s.handleCreateWorld(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteWorld(w, r)
	case remainingPath == "/state" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "state")
	case remainingPath == "/stats" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "stats")
	case remainingPath == "/atoms" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "atoms")
	case remainingPath == "/atoms" && r.Method == http.MethodPost:
		s.handleAddAtom(w, r)
	case strings.HasPrefix(remainingPath, "/atoms/") && r.Method == http.MethodDelete:
		s.handleRemoveAtom(w, r, strings.TrimPrefix(remainingPath, "/atoms/"))
	case remainingPath == "/bonds" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "bonds")
	case remainingPath == "/bonds" && r.Method == http.MethodPost:
		s.handleAddBond(w, r)
	case strings.HasPrefix(remainingPath, "/bonds/") && r.Method == http.MethodDelete:
		s.handleRemoveBond(w, r, strings.TrimPrefix(remainingPath, "/bonds/"))
	case remainingPath == "/molecules" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "molecules")
	case remainingPath == "/polymers" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "polymers")
	case remainingPath == "/intentions" && r.Method == http.MethodGet:
		s.handleWorldCollection(w, r, "intentions")
	case remainingPath == "/intentions" && r.Method == http.MethodPost:
		s.handleAddIntention(w, r)
	case strings.HasPrefix(remainingPath, "/intentions/") && r.Method == http.MethodDelete:
		s.handleRemoveIntention(w, r, strings.TrimPrefix(remainingPath, "/intentions/"))
	case remainingPath == "/select" && r.Method == http.MethodPost:
		s.handleSelect(w, r)
	case remainingPath == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r)
	case remainingPath == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		s.handleStop(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	case remainingPath == "/restore" && r.Method == http.MethodPost:
		s.handleRestore(w, r)
	case remainingPath == "/discoveries" && r.Method == http.MethodGet:
		s.handleWorldDiscoveries(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleWorldCollection serves the read-only views of a world.
func (s *Server) handleWorldCollection(w http.ResponseWriter, r *http.Request, what string) {
	world, ok := s.getWorld(w, r)
	if !ok {
		return
	}

	switch what {
	case "state":
		writeJSON(w, http.StatusOK, world.State())
	case "stats":
		writeJSON(w, http.StatusOK, world.Stats())
	case "atoms":
		writeJSON(w, http.StatusOK, map[string]any{"atoms": world.Atoms()})
	case "bonds":
		writeJSON(w, http.StatusOK, map[string]any{"bonds": world.Bonds()})
	case "molecules":
		writeJSON(w, http.StatusOK, map[string]any{"molecules": world.Molecules()})
	case "polymers":
		writeJSON(w, http.StatusOK, map[string]any{"polymers": world.Polymers()})
	case "intentions":
		writeJSON(w, http.StatusOK, map[string]any{"intentions": world.Intentions()})
	}
}

// GET /worlds
// List all worlds with their count summaries
func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	worldIDs := s.manager.ListWorlds()

	stats := make([]engine.Stats, 0, len(worldIDs))
	for _, id := range worldIDs {
		if world, ok := s.manager.GetWorld(id); ok {
			stats = append(stats, world.Stats())
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"worlds": stats})
}

// GET /discoveries
// List every discovery across all worlds
func (s *Server) handleAllDiscoveries(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "catalog not configured", http.StatusInternalServerError)
		return
	}

	discoveries, err := s.catalog.All()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"discoveries": discoveries})
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.globalNotifierMgr.ListNotifiers()

	// Get notifier types
	notifiers := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.globalNotifierMgr.GetNotifier(id)
		if exists {
			notifiers = append(notifiers, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifiers": notifiers})
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
// or:   { "type": "websocket", "id": "my-stream" }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier engine.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := enginenotifiers.NewWebhookNotifier(req.ID, url)

		// Set custom headers if provided
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	case "websocket":
		notifier = enginenotifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.globalNotifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.refreshNotifierIDs()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.globalNotifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.refreshNotifierIDs()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws/{notifierID}
// Upgrades the connection and attaches it to a registered websocket notifier
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required in path: /ws/{notifierID}", http.StatusBadRequest)
		return
	}

	notifier, exists := s.globalNotifierMgr.GetNotifier(notifierID)
	if !exists {
		http.Error(w, "notifier not found", http.StatusNotFound)
		return
	}

	wsNotifier, ok := notifier.(*enginenotifiers.WebSocketNotifier)
	if !ok {
		http.Error(w, "notifier is not a websocket notifier", http.StatusBadRequest)
		return
	}

	upgrader := wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: notifier=%s error=%v", notifierID, err)
		return
	}

	wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: notifier=%s remote=%s", notifierID, r.RemoteAddr)

	// Drain the read side until the client goes away, then unregister.
	go func() {
		defer wsNotifier.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
