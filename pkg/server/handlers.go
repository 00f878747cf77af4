package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/movement"
	"github.com/matzehuels/nodecanvas/pkg/persist"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
)

// =============================================================================
// Request Bodies
// =============================================================================

type nodeRequest struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Position  geom.Point  `json:"position"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Rotation  float64     `json:"rotation"`
	ZIndex    int         `json:"zIndex"`
	Group     string      `json:"group"`
	Locked    bool        `json:"locked"`
	Resizable bool        `json:"resizable"`
	Editable  bool        `json:"editable"`
	Collapsed bool        `json:"collapsed"`
	Style     graph.Style `json:"style"`
}

type anchorRequest struct {
	ID           string     `json:"id"`
	At           geom.Point `json:"at"`
	Size         geom.Size  `json:"size"`
	Direction    string     `json:"direction"`
	Type         string     `json:"type"`
	Dynamic      bool       `json:"dynamic"`
	EdgeColor    string     `json:"edgeColor"`
	EdgeRenderer string     `json:"edgeRenderer"`
}

type edgeRequest struct {
	Source string          `json:"source"`
	Target string          `json:"target"`
	Style  graph.EdgeStyle `json:"style"`
}

type selectionRequest struct {
	Mode  string   `json:"mode"` // set (default), add, remove, clear
	Nodes []string `json:"nodes"`
}

type dragStartRequest struct {
	Group  string      `json:"group"`
	Cursor *geom.Point `json:"cursor"`
}

type cursorRequest struct {
	Cursor *geom.Point `json:"cursor"`
}

type anchorRef struct {
	Anchor string          `json:"anchor"`
	Style  graph.EdgeStyle `json:"style"`
}

// =============================================================================
// Responses
// =============================================================================

type edgeResponse struct {
	Source  string          `json:"source"`
	Target  string          `json:"target"`
	Style   graph.EdgeStyle `json:"style,omitzero"`
	Created bool            `json:"created"`
}

type dragResponse struct {
	Group  string                `json:"group"`
	Active bool                  `json:"active"`
	Frames int                   `json:"frames"`
	Nodes  map[string]geom.Point `json:"nodes"`
}

func newDragResponse(d *movement.Drag) dragResponse {
	resp := dragResponse{Group: d.Group(), Active: d.Active(), Frames: d.Frames(), Nodes: map[string]geom.Point{}}
	for _, n := range d.Nodes() {
		resp.Nodes[n.ID()] = n.Position()
	}
	return resp
}

func newEdgeResponse(e *graph.Edge, created bool) edgeResponse {
	return edgeResponse{Source: e.Source.ID(), Target: e.Target.ID(), Style: e.Style, Created: created}
}

func nodeIDs(nodes []*graph.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	return ids
}

func lookupAnchor(g *graph.Graph, id string) (*graph.Anchor, error) {
	a, ok := g.Anchor(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeAnchorNotFound, "anchor %q not found", id)
	}
	return a, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var snap graph.Snapshot
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		snap = graph.TakeSnapshot(g)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var rec graph.NodeRecord
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		n, err := g.AddNode(graph.NodeConfig{
			ID:        req.ID,
			Label:     req.Label,
			Position:  req.Position,
			Width:     req.Width,
			Height:    req.Height,
			Rotation:  req.Rotation,
			ZIndex:    req.ZIndex,
			Group:     req.Group,
			Locked:    req.Locked,
			Resizable: req.Resizable,
			Editable:  req.Editable,
			Collapsed: req.Collapsed,
			Style:     req.Style,
		})
		if err != nil {
			return err
		}
		rec = graph.RecordOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		if !g.DeleteNode(id) {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddAnchor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req anchorRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir, err := graph.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidAnchor, err, "anchor direction"))
		return
	}
	typ, err := graph.ParseAnchorType(req.Type)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidAnchor, err, "anchor type"))
		return
	}

	var rec graph.NodeRecord
	err = s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		n, ok := g.Node(id)
		if !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		_, err := n.CreateAnchor(req.ID, req.At, req.Size, graph.AnchorOptions{
			Direction:    dir,
			Type:         typ,
			Dynamic:      req.Dynamic,
			EdgeColor:    req.EdgeColor,
			EdgeRenderer: req.EdgeRenderer,
		})
		if err != nil {
			return err
		}
		rec = graph.RecordOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp edgeResponse
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		src, err := lookupAnchor(g, req.Source)
		if err != nil {
			return err
		}
		tgt, err := lookupAnchor(g, req.Target)
		if err != nil {
			return err
		}
		e, created, err := g.Connect(src, tgt, req.Style)
		if err != nil {
			return err
		}
		resp = newEdgeResponse(e, created)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		src, err := lookupAnchor(g, req.Source)
		if err != nil {
			return err
		}
		tgt, err := lookupAnchor(g, req.Target)
		if err != nil {
			return err
		}
		if !g.Disconnect(src, tgt) {
			return errors.New(errors.ErrCodeNotFound, "no edge between %s and %s", src.ID(), tgt.ID())
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var selected []string
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		nodes := make([]*graph.Node, 0, len(req.Nodes))
		for _, id := range req.Nodes {
			n, ok := g.Node(id)
			if !ok {
				return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
			}
			nodes = append(nodes, n)
		}
		switch req.Mode {
		case "", "set":
			g.ClearSelection()
			g.Select(nodes...)
		case "add":
			g.Select(nodes...)
		case "remove":
			g.Deselect(nodes...)
		case "clear":
			g.ClearSelection()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown selection mode %q", req.Mode)
		}
		selected = nodeIDs(g.Selected())
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"selected": selected})
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Group == "" {
		req.Group = graph.SelectedGroup
	}
	var resp dragResponse
	err := s.Do(r.Context(), func(g *graph.Graph, e *movement.Engine) error {
		if req.Cursor != nil {
			g.SetCursor(*req.Cursor)
		}
		resp = newDragResponse(e.Start(req.Group))
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCursor moves the cursor. Active drags follow it on their next frame
// and an in-progress connection's free end follows it immediately.
func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Cursor == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "cursor is required"))
		return
	}
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		g.UpdateCursorEdge(*req.Cursor)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]geom.Point{"cursor": *req.Cursor})
}

// handleDragEnd applies the final cursor position and stops the drag, so
// the result does not depend on whether a frame fired after the last
// cursor update.
func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp dragResponse
	err := s.Do(r.Context(), func(g *graph.Graph, e *movement.Engine) error {
		d := e.Active()
		if d == nil {
			return errors.New(errors.ErrCodeInvalidInput, "no drag in progress")
		}
		if req.Cursor != nil {
			g.SetCursor(*req.Cursor)
		}
		d.Apply()
		d.Stop()
		resp = newDragResponse(d)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConnectionBegin(w http.ResponseWriter, r *http.Request) {
	var req anchorRef
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		a, err := lookupAnchor(g, req.Anchor)
		if err != nil {
			return err
		}
		return g.BeginConnection(a)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectionComplete(w http.ResponseWriter, r *http.Request) {
	var req anchorRef
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp edgeResponse
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		a, err := lookupAnchor(g, req.Anchor)
		if err != nil {
			g.CancelConnection()
			return err
		}
		e, created, err := g.CompleteConnection(a, req.Style)
		if err != nil {
			return err
		}
		resp = newEdgeResponse(e, created)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleConnectionCancel(w http.ResponseWriter, r *http.Request) {
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		g.CancelConnection()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSave snapshots the canvas on the loop and writes it outside it, so
// slow sinks never stall drag frames.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no storage configured"))
		return
	}
	name := chi.URLParam(r, "name")
	if err := errors.ValidateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	var snap graph.Snapshot
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		snap = graph.TakeSnapshot(g)
		return nil
	})
	if err == nil {
		err = persist.SaveSnapshot(r.Context(), s.sink, name, snap)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("saved diagram", "name", name, "backend", s.sink.Name(), "nodes", len(snap.Nodes))
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "backend": s.sink.Name()})
}

// handleLoad replaces the live canvas with a stored diagram. Any drag in
// progress on the old canvas is stopped.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no storage configured"))
		return
	}
	name := chi.URLParam(r, "name")
	loaded, err := persist.Load(r.Context(), s.sink, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var snap graph.Snapshot
	err = s.Do(r.Context(), func(_ *graph.Graph, _ *movement.Engine) error {
		s.setGraph(loaded)
		snap = graph.TakeSnapshot(loaded)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("loaded diagram", "name", name, "backend", s.sink.Name(), "nodes", len(snap.Nodes))
	writeJSON(w, http.StatusOK, snap)
}

func exportOptions(r *http.Request) nodelink.Options {
	q := r.URL.Query()
	detailed, _ := strconv.ParseBool(q.Get("detailed"))
	pinned, _ := strconv.ParseBool(q.Get("pinned"))
	return nodelink.Options{Detailed: detailed, Pinned: pinned}
}

func (s *Server) dot(r *http.Request, opts nodelink.Options) (string, error) {
	var dot string
	err := s.Do(r.Context(), func(g *graph.Graph, _ *movement.Engine) error {
		dot = nodelink.ToDOT(g, opts)
		return nil
	})
	return dot, err
}

func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r, exportOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	opts := exportOptions(r)
	dot, err := s.dot(r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), dot, opts)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
