package net

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"VRBoard/internal/engine"

	"github.com/gorilla/websocket"
)

const (
	writeWait   = 5 * time.Second
	sendBacklog = 1024
)

// Peer is one connected device.
type Peer struct {
	Conn *websocket.Conn
	send chan []byte
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{Conn: conn, send: make(chan []byte, sendBacklog)}
}

// writeLoop sends queued frames until the queue is closed or a write fails.
func (p *Peer) writeLoop() {
	defer p.Conn.Close()
	for data := range p.send {
		p.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[LINK] Write to %s failed: %v", p.Conn.RemoteAddr(), err)
			return
		}
	}
	p.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// PeerManager tracks every connected device and fans render frames out to them.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
}

func NewPeerManager() *PeerManager {
	return &PeerManager{peers: make(map[string]*Peer)}
}

// Add registers a peer and starts its writer.
func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	pm.peers[addr] = peer
	go peer.writeLoop()
	log.Printf("[LINK] Device connected from %s", addr)
}

// Remove drops a peer and stops its writer.
func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	if pm.peers[addr] != peer {
		return
	}
	delete(pm.peers, addr)
	close(peer.send)
	log.Printf("[LINK] Device %s disconnected", addr)
}

func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues msg for every peer. A peer whose backlog is full misses
// the frame rather than stalling the tick.
func (pm *PeerManager) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[LINK] Encode %s: %v", msg.Type, err)
		return
	}
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for addr, p := range pm.peers {
		if !trySend(p, data) {
			log.Printf("[LINK] Dropped %s frame for slow device %s", msg.Type, addr)
		}
	}
}

// queue encodes msg and queues it for this peer only.
func (p *Peer) queue(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[LINK] Encode %s: %v", msg.Type, err)
		return false
	}
	return trySend(p, data)
}

func trySend(p *Peer, data []byte) bool {
	select {
	case p.send <- data:
		return true
	default:
		return false
	}
}

// readLoop pushes every decodable frame from p into e until the connection ends.
func readLoop(p *Peer, e *engine.Engine) {
	addr := p.Conn.RemoteAddr().String()
	for {
		var msg Message
		if err := p.Conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Printf("[LINK] Malformed frame from %s: %v", addr, err)
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[LINK] Read from %s: %v", addr, err)
			}
			return
		}
		ev, err := msg.Event()
		if err != nil {
			log.Printf("[LINK] Ignored frame from %s: %v", addr, err)
			continue
		}
		e.Push(ev)
	}
}
