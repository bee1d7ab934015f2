// Package client provides a Go client for the primordium server: a fluent
// builder for chemistry libraries (elements and stable templates) and typed
// wrappers around the world HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/primordialab/primordium/internal/engine"
)

// LibraryBuilder provides a fluent API for building chemistry libraries.
// Use it to define the elements a world contains and the stable shapes
// molecules of those elements can settle into.
type LibraryBuilder struct {
	name      string
	elements  []engine.ElementConfig
	templates []*TemplateBuilder
}

// NewLibrary creates a new library builder with the given name.
// The name identifies the library and is used for organization purposes.
func NewLibrary(name string) *LibraryBuilder {
	return &LibraryBuilder{
		name:      name,
		elements:  make([]engine.ElementConfig, 0),
		templates: make([]*TemplateBuilder, 0),
	}
}

// Element adds an element definition to the library.
// Mass and radius are in world units; maxValence is the number of bond
// slots atoms of this element offer.
func (lb *LibraryBuilder) Element(symbol, name string, mass, radius float64, maxValence int) *LibraryBuilder {
	lb.elements = append(lb.elements, engine.ElementConfig{
		Symbol:     symbol,
		Name:       name,
		Mass:       mass,
		Radius:     radius,
		MaxValence: maxValence,
	})
	return lb
}

// ElementColored adds an element definition with a display color.
func (lb *LibraryBuilder) ElementColored(symbol, name string, mass, radius float64, maxValence int, color string) *LibraryBuilder {
	lb.elements = append(lb.elements, engine.ElementConfig{
		Symbol:     symbol,
		Name:       name,
		Mass:       mass,
		Radius:     radius,
		MaxValence: maxValence,
		Color:      color,
	})
	return lb
}

// Template adds a stable template definition to the library.
func (lb *LibraryBuilder) Template(tb *TemplateBuilder) *LibraryBuilder {
	lb.templates = append(lb.templates, tb)
	return lb
}

// Build converts the builder to a LibraryConfig that can be used with
// CreateWorld or validated with engine.ValidateLibraryConfig.
func (lb *LibraryBuilder) Build() engine.LibraryConfig {
	templates := make([]engine.TemplateConfig, 0, len(lb.templates))
	for _, tb := range lb.templates {
		templates = append(templates, tb.Build())
	}

	return engine.LibraryConfig{
		Name:      lb.name,
		Elements:  lb.elements,
		Templates: templates,
	}
}

// TemplateBuilder provides a fluent API for building stable templates.
// A template names a formula, the canonical slot positions (relative to the
// template's center), and the bond topology between slots.
type TemplateBuilder struct {
	name      string
	formula   string
	reactive  bool
	tolerance float64
	slots     []engine.SlotConfig
	bonds     []engine.TemplateBondConfig
}

// NewTemplate creates a new template builder with the given name and
// formula. The formula must match the slot composition exactly.
func NewTemplate(name, formula string) *TemplateBuilder {
	return &TemplateBuilder{
		name:    name,
		formula: formula,
		slots:   make([]engine.SlotConfig, 0),
		bonds:   make([]engine.TemplateBondConfig, 0),
	}
}

// Reactive marks the template as a monomer: stable molecules of this shape
// are eligible for polymer formation.
func (tb *TemplateBuilder) Reactive() *TemplateBuilder {
	tb.reactive = true
	return tb
}

// Tolerance overrides the geometry match tolerance for this template.
func (tb *TemplateBuilder) Tolerance(t float64) *TemplateBuilder {
	tb.tolerance = t
	return tb
}

// Slot adds an atom position to the template. Slot indices are assigned in
// call order and referenced by Bond.
func (tb *TemplateBuilder) Slot(symbol string, x, y float64) *TemplateBuilder {
	tb.slots = append(tb.slots, engine.SlotConfig{Symbol: symbol, X: x, Y: y})
	return tb
}

// Bond connects two slots by index with the given order (1..3).
func (tb *TemplateBuilder) Bond(a, b, order int) *TemplateBuilder {
	tb.bonds = append(tb.bonds, engine.TemplateBondConfig{A: a, B: b, Order: order})
	return tb
}

// Build converts the builder to a TemplateConfig.
func (tb *TemplateBuilder) Build() engine.TemplateConfig {
	return engine.TemplateConfig{
		Name:      tb.name,
		Formula:   tb.formula,
		Reactive:  tb.reactive,
		Tolerance: tb.tolerance,
		Slots:     tb.slots,
		Bonds:     tb.bonds,
	}
}

// Client talks to a primordium server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// NewWithHTTPClient creates a client using a caller-supplied http.Client,
// for custom timeouts or transports.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) do(ctx context.Context, method string, pathParts []string, query url.Values, body, out any) error {
	u, err := url.JoinPath(c.baseURL, pathParts...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CreateWorldOptions configures world creation. The zero value uses server
// defaults and the built-in chemistry.
type CreateWorldOptions struct {
	Width   float64
	Height  float64
	Seed    int64
	Library *LibraryBuilder
}

type createWorldBody struct {
	Width   float64               `json:"width,omitempty"`
	Height  float64               `json:"height,omitempty"`
	Seed    int64                 `json:"seed,omitempty"`
	Library *engine.LibraryConfig `json:"library,omitempty"`
}

// CreateWorld creates a world on the server.
func (c *Client) CreateWorld(ctx context.Context, worldID string, opts CreateWorldOptions) error {
	body := createWorldBody{Width: opts.Width, Height: opts.Height, Seed: opts.Seed}
	if opts.Library != nil {
		cfg := opts.Library.Build()
		body.Library = &cfg
	}
	return c.do(ctx, http.MethodPost, []string{"world", worldID}, nil, body, nil)
}

// DeleteWorld removes a world from the server.
func (c *Client) DeleteWorld(ctx context.Context, worldID string) error {
	return c.do(ctx, http.MethodDelete, []string{"world", worldID}, nil, nil, nil)
}

// ListWorlds returns the count summaries of every world on the server.
func (c *Client) ListWorlds(ctx context.Context) ([]engine.Stats, error) {
	var out struct {
		Worlds []engine.Stats `json:"worlds"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"worlds"}, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Worlds, nil
}

// AddAtom spawns an atom and returns its id.
func (c *Client) AddAtom(ctx context.Context, worldID, symbol string, x, y float64) (string, error) {
	body := map[string]any{"symbol": symbol, "x": x, "y": y}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, []string{"world", worldID, "atoms"}, nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RemoveAtom deletes an atom.
func (c *Client) RemoveAtom(ctx context.Context, worldID, atomID string) error {
	return c.do(ctx, http.MethodDelete, []string{"world", worldID, "atoms", atomID}, nil, nil, nil)
}

// AddBond creates a manual bond between two atoms and returns its id.
func (c *Client) AddBond(ctx context.Context, worldID, a, b string, order int) (string, error) {
	body := map[string]any{"a": a, "b": b, "order": order}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, []string{"world", worldID, "bonds"}, nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RemoveBond breaks a bond.
func (c *Client) RemoveBond(ctx context.Context, worldID, bondID string) error {
	return c.do(ctx, http.MethodDelete, []string{"world", worldID, "bonds", bondID}, nil, nil, nil)
}

// AddMoleculeIntention registers a molecule goal region and returns the
// intention id.
func (c *Client) AddMoleculeIntention(ctx context.Context, worldID string, x, y, radius float64, formula string) (string, error) {
	body := map[string]any{"kind": "molecule", "x": x, "y": y, "radius": radius, "formula": formula}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, []string{"world", worldID, "intentions"}, nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AddPolymerIntention registers a polymer goal region and returns the
// intention id.
func (c *Client) AddPolymerIntention(ctx context.Context, worldID string, x, y, radius float64, monomerFormula string, count int) (string, error) {
	body := map[string]any{"kind": "polymer", "x": x, "y": y, "radius": radius, "formula": monomerFormula, "count": count}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, []string{"world", worldID, "intentions"}, nil, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RemoveIntention cancels an intention.
func (c *Client) RemoveIntention(ctx context.Context, worldID, intentionID string) error {
	return c.do(ctx, http.MethodDelete, []string{"world", worldID, "intentions", intentionID}, nil, nil, nil)
}

// Tick advances the world by the given number of steps.
func (c *Client) Tick(ctx context.Context, worldID string, steps int) error {
	query := url.Values{}
	if steps > 1 {
		query.Set("steps", fmt.Sprintf("%d", steps))
	}
	return c.do(ctx, http.MethodPost, []string{"world", worldID, "tick"}, query, nil, nil)
}

// Start begins auto-running the world at the given interval in milliseconds.
func (c *Client) Start(ctx context.Context, worldID string, intervalMS int) error {
	query := url.Values{}
	if intervalMS > 0 {
		query.Set("interval", fmt.Sprintf("%d", intervalMS))
	}
	return c.do(ctx, http.MethodPost, []string{"world", worldID, "start"}, query, nil, nil)
}

// Stop halts an auto-running world.
func (c *Client) Stop(ctx context.Context, worldID string) error {
	return c.do(ctx, http.MethodPost, []string{"world", worldID, "stop"}, nil, nil, nil)
}

// State fetches a full copied view of the world.
func (c *Client) State(ctx context.Context, worldID string) (engine.WorldState, error) {
	var out engine.WorldState
	err := c.do(ctx, http.MethodGet, []string{"world", worldID, "state"}, nil, nil, &out)
	return out, err
}

// Stats fetches the count summary of the world.
func (c *Client) Stats(ctx context.Context, worldID string) (engine.Stats, error) {
	var out engine.Stats
	err := c.do(ctx, http.MethodGet, []string{"world", worldID, "stats"}, nil, nil, &out)
	return out, err
}

// Molecules fetches the world's molecules.
func (c *Client) Molecules(ctx context.Context, worldID string) ([]engine.MoleculeState, error) {
	var out struct {
		Molecules []engine.MoleculeState `json:"molecules"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"world", worldID, "molecules"}, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Molecules, nil
}

// Polymers fetches the world's polymers.
func (c *Client) Polymers(ctx context.Context, worldID string) ([]engine.PolymerState, error) {
	var out struct {
		Polymers []engine.PolymerState `json:"polymers"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"world", worldID, "polymers"}, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Polymers, nil
}

// Intentions fetches the world's active intentions.
func (c *Client) Intentions(ctx context.Context, worldID string) ([]engine.IntentionState, error) {
	var out struct {
		Intentions []engine.IntentionState `json:"intentions"`
	}
	if err := c.do(ctx, http.MethodGet, []string{"world", worldID, "intentions"}, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Intentions, nil
}

// Snapshot fetches the world's current snapshot.
func (c *Client) Snapshot(ctx context.Context, worldID string) (engine.Snapshot, error) {
	var out engine.Snapshot
	err := c.do(ctx, http.MethodGet, []string{"world", worldID, "snapshot"}, nil, nil, &out)
	return out, err
}

// Restore replaces the world's contents with a snapshot.
func (c *Client) Restore(ctx context.Context, worldID string, snapshot engine.Snapshot) error {
	return c.do(ctx, http.MethodPost, []string{"world", worldID, "restore"}, nil, snapshot, nil)
}

// RegisterWebhook registers a webhook notifier on the server.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string) error {
	body := map[string]any{
		"type":   "webhook",
		"id":     id,
		"config": map[string]any{"url": webhookURL},
	}
	return c.do(ctx, http.MethodPost, []string{"notifiers"}, nil, body, nil)
}

// RegisterWebSocket registers a websocket notifier; clients connect to
// /ws/{id} to receive the event stream.
func (c *Client) RegisterWebSocket(ctx context.Context, id string) error {
	body := map[string]any{"type": "websocket", "id": id}
	return c.do(ctx, http.MethodPost, []string{"notifiers"}, nil, body, nil)
}
