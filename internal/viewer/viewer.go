package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
)

// --- Graph types ---

type GraphNode struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"` // "start", "task" or "end"
	Rank       int    `json:"rank"`
	Duration   int    `json:"duration"`
	Earliest   int    `json:"earliest"`
	Latest     int    `json:"latest"`
	Slack      int    `json:"slack"`
	IsCritical bool   `json:"is_critical"`
}

type GraphEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Weight     int    `json:"weight"`
	IsCritical bool   `json:"is_critical"`
}

type GraphMetadata struct {
	Source        string `json:"source"`
	CreatedAt     string `json:"created_at"`
	VertexCount   int    `json:"vertex_count"`
	ArcCount      int    `json:"arc_count"`
	TotalDuration int    `json:"total_duration"`
}

type Graph struct {
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	CriticalPath []string      `json:"critical_path"`
	Metadata     GraphMetadata `json:"metadata"`
}

func kindName(v graph.Vertex) string {
	switch {
	case v.IsStart():
		return "start"
	case v.IsEnd():
		return "end"
	default:
		return "task"
	}
}

// criticalArc reports whether an arc lies on a critical path: both ends
// have zero slack and the arc is tight (earliest(to) = earliest(from) + w).
func criticalArc(r *cpm.Result, arc graph.Arc) bool {
	if !r.Scheduled() {
		return false
	}
	if r.Slacks[arc.From] != 0 || r.Slacks[arc.To] != 0 {
		return false
	}
	return r.Schedule.Earliest[arc.To] == r.Schedule.Earliest[arc.From]+arc.Weight
}

// ToGraph converts an analysis into the normalised Graph served to clients.
func ToGraph(r *cpm.Result, source string) *Graph {
	n := r.Network
	g := &Graph{
		Nodes:        make([]GraphNode, 0, n.VertexCount()),
		Edges:        make([]GraphEdge, 0, n.ArcCount()),
		CriticalPath: make([]string, 0, len(r.CriticalPath)),
		Metadata: GraphMetadata{
			Source:        source,
			CreatedAt:     time.Now().Format(time.RFC3339),
			VertexCount:   n.VertexCount(),
			ArcCount:      n.ArcCount(),
			TotalDuration: r.TotalDuration,
		},
	}

	for _, v := range n.Vertices {
		node := GraphNode{
			ID:       v.String(),
			Kind:     kindName(v),
			Duration: n.Duration(v),
		}
		if r.Scheduled() {
			node.Rank = r.Ranks[v]
			node.Earliest = r.Schedule.Earliest[v]
			node.Latest = r.Schedule.Latest[v]
			node.Slack = r.Slacks[v]
			node.IsCritical = r.Slacks[v] == 0
		}
		g.Nodes = append(g.Nodes, node)
	}

	for _, arc := range n.Arcs() {
		g.Edges = append(g.Edges, GraphEdge{
			From:       arc.From.String(),
			To:         arc.To.String(),
			Weight:     arc.Weight,
			IsCritical: criticalArc(r, arc),
		})
	}

	for _, v := range r.CriticalPath {
		g.CriticalPath = append(g.CriticalPath, v.String())
	}
	return g
}

// DOT renders the network in Graphviz format with critical vertices and
// arcs highlighted.
func DOT(r *cpm.Result) string {
	var b strings.Builder
	b.WriteString("digraph pertloom {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	n := r.Network
	for _, v := range n.Vertices {
		label := v.String()
		if r.Scheduled() {
			label = fmt.Sprintf("%s\\nES %d | LS %d", v, r.Schedule.Earliest[v], r.Schedule.Latest[v])
		}
		attrs := fmt.Sprintf(`label="%s"`, label)
		if !v.IsTask() {
			attrs += ", shape=circle"
		}
		if r.Scheduled() && r.Slacks[v] == 0 {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(&b, "  %q [%s];\n", v.String(), attrs)
	}

	b.WriteString("\n")

	for _, arc := range n.Arcs() {
		style := fmt.Sprintf(` [label="%d"`, arc.Weight)
		if criticalArc(r, arc) {
			style += `, color=red, penwidth=2`
		}
		style += "]"
		fmt.Fprintf(&b, "  %q -> %q%s;\n", arc.From.String(), arc.To.String(), style)
	}

	b.WriteString("}\n")
	return b.String()
}

// --- HTTP server ---

// Server exposes the current analysis over HTTP.
type Server struct {
	mu    sync.RWMutex
	graph *Graph
	dot   string
}

// NewServer creates a Server with nothing loaded.
func NewServer() *Server {
	return &Server{}
}

// Set replaces the analysis being served.
func (s *Server) Set(r *cpm.Result, source string) {
	g := ToGraph(r, source)
	dot := DOT(r)

	s.mu.Lock()
	s.graph = g
	s.dot = dot
	s.mu.Unlock()
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	router.Get("/graph", s.handleGetGraph)
	router.Get("/graph.dot", s.handleGetDOT)
	router.Get("/graph/nodes/{id}", s.handleGetNode)
	return router
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	writeJSON(w, g)
}

func (s *Server) handleGetDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	dot := s.dot
	s.mu.RUnlock()

	if dot == "" {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}
	for _, node := range g.Nodes {
		if node.ID == id {
			writeJSON(w, node)
			return
		}
	}
	http.Error(w, "no such vertex", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "err", err)
	}
}

// Serve listens on addr and serves until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("viewer listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown viewer: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("viewer stopped")
	return nil
}
