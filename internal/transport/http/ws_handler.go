package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler bridges a renderer (phone or browser) to a single player's quiz session.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type settingsPayload struct {
	SoundEnabled *bool   `json:"soundEnabled"`
	Difficulty   *string `json:"difficulty"`
}

type joinedPayload struct {
	Player   string           `json:"player"`
	State    domain.GameState `json:"state"`
	Settings domain.Settings  `json:"settings"`
}

type settingsResult struct {
	Settings domain.Settings  `json:"settings"`
	State    domain.GameState `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
// Settings are saved when the socket closes; the session is dropped when the player's last socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		player = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	state, err := h.service.Join(ctx, player)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	// other sockets for the same player keep the session alive
	defer func() {
		if err := h.service.Leave(context.WithoutCancel(ctx), player); err != nil {
			log.Printf("leave session %s: %v", player, err)
		}
	}()
	settings, err := h.service.Settings(ctx, player)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, player)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		<-updates // initial snapshot, already part of joined
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{Player: player, State: state, Settings: settings}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handle(r, player, inbound)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, player string, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload")
		}
		tr, err := h.service.SubmitAnswer(ctx, player, payload.Option)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "turn", Payload: tr}
	case "restart":
		tr, err := h.service.Restart(ctx, player)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "turn", Payload: tr}
	case "settings":
		var payload settingsPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return errorMessage("invalid settings payload")
			}
		}
		update := domain.SettingsUpdate{SoundEnabled: payload.SoundEnabled}
		if payload.Difficulty != nil {
			d := domain.Difficulty(*payload.Difficulty)
			update.Difficulty = &d
		}
		settings, state, err := h.service.UpdateSettings(ctx, player, update)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "settings", Payload: settingsResult{Settings: settings, State: state}}
	default:
		return errorMessage("unsupported message type")
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
