package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/marben/bandmandel/internal/imgfile"
)

// webServer creates the http server with the irpc websocket endpoint,
// the finished image and the rendering progress.
// Websocket connections are handed to the returned listener.
func webServer(ctx context.Context, addr string, iws *imgWorkScheduler) (*WebsocketListener, *http.Server) {
	l := NewWSListener(ctx, addr+"/ws")
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(l, iws),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://%s", addr)
	return l, srv
}

func newMux(l *WebsocketListener, iws *imgWorkScheduler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l))
	mux.HandleFunc("/image", imageHandler(iws))
	mux.HandleFunc("/progress", progressHandler(iws))
	return mux
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to WebsocketListener so it can be accepted
func websocketHandler(l *WebsocketListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

// imageHandler blocks until the image is complete and sends it encoded as ?format= (png by default).
func imageHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := imgfile.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		img, err := iws.GetImage(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		if err := imgfile.Encode(w, format, img); err != nil {
			log.Printf("err: encode image: %v", err)
		}
	}
}

func progressHandler(iws *imgWorkScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(iws.progress()); err != nil {
			log.Printf("err: encode progress: %v", err)
		}
	}
}

// WebsocketListener implements net.Listener over accepted websocket connections,
// so the irpc server can serve them the same way it serves tcp.
type WebsocketListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context // bounds the lifetime of every accepted connection
	cancel context.CancelFunc
	addr   wsAddr
}

func NewWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

// Close stops accepting and closes the connections accepted so far.
func (l *WebsocketListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
