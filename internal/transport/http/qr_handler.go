package http

import (
	"log"
	"net/http"

	qr "github.com/skip2/go-qrcode"
)

// QRHandler serves a PNG QR code of the WebSocket address so a phone can pair by scanning it.
type QRHandler struct {
	publicURL string
}

// NewQRHandler encodes publicURL, or ws://<request host>/ws when it is empty.
func NewQRHandler(publicURL string) *QRHandler {
	return &QRHandler{publicURL: publicURL}
}

func (h *QRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := h.publicURL
	if url == "" {
		url = "ws://" + r.Host + "/ws"
	}
	png, err := qr.Encode(url, qr.Medium, 256)
	if err != nil {
		log.Printf("qr encode failed: %v", err)
		http.Error(w, "could not encode qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// NewMux wires the quiz HTTP routes.
func NewMux(ws *WSHandler, qrHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.Handle("/qr", qrHandler)
	return mux
}
