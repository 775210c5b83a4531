// Package net links headsets and observers to the engine: a WebSocket
// endpoint carries input events in and render frames out, and the link is
// advertised on the local network over mDNS.
package net

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"net"
	"net/http"
	"time"

	"VRBoard/internal/engine"
	"VRBoard/internal/export"
	"VRBoard/internal/geom"

	"github.com/gorilla/websocket"
)

const shutdownWait = 5 * time.Second

// Server serves the device link and the PDF export over HTTP. It is an
// engine.RenderSink and forwards every frame to connected devices.
type Server struct {
	engine   *engine.Engine
	peers    *PeerManager
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer creates a server for e and registers it as a render sink.
func NewServer(e *engine.Engine) *Server {
	s := &Server{
		engine: e,
		peers:  NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Devices on the local network connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("/link", s.handleLink)
	s.mux.HandleFunc("/export.pdf", s.handleExport)
	e.AddSink(s)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Peers() *PeerManager { return s.peers }

func (s *Server) Render(id string, points []geom.Vec3, c color.NRGBA) {
	s.peers.Broadcast(RenderMessage(id, points, c))
}

func (s *Server) Hide(id string) {
	s.peers.Broadcast(HideMessage(id))
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[LINK] Shutdown: %v", err)
		}
	}()

	log.Printf("[LINK] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve link: %w", err)
	}
	return nil
}

// handleLink upgrades to a WebSocket, sends the current scene and then
// forwards the device's frames to the engine.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[LINK] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	peer := newPeer(conn)

	// Join on the tick goroutine so no frame falls between snapshot and broadcast.
	ctx := r.Context()
	err = s.engine.Do(ctx, func() {
		if ctx.Err() != nil {
			return
		}
		s.peers.Add(peer)
		for _, st := range s.engine.Registry.Live() {
			peer.queue(RenderMessage(st.ID, st.WorldPoints(), st.DisplayColor()))
		}
	})
	if err != nil {
		conn.Close()
		return
	}
	defer s.peers.Remove(peer)
	readLoop(peer, s.engine)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view := export.ViewFront
	if name := r.URL.Query().Get("view"); name != "" {
		v, ok := export.ParseView(name)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown view %q", name), http.StatusBadRequest)
			return
		}
		view = v
	}

	var strokes []export.Stroke
	if err := s.engine.Do(r.Context(), func() {
		strokes = export.FromStrokes(s.engine.Registry.All())
	}); err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="sketch-%s.pdf"`, view))
	if err := export.WritePDF(w, strokes, view); err != nil {
		log.Printf("[LINK] Export failed: %v", err)
	}
}
