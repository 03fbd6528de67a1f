package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.TrainerService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.TrainerService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: slog.Default(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type inputPayload struct {
	BlankID string `json:"blankId"`
	Text    string `json:"text"`
}

type checkPayload struct {
	BlankID  string  `json:"blankId"`
	Position float64 `json:"position"` // audio playback position, seconds
}

type navigatePayload struct {
	Index int `json:"index"`
}

type blankPayload struct {
	BlankID string            `json:"blankId"`
	State   domain.BlankState `json:"state"`
	Phase   domain.BlankPhase `json:"phase"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS opens the requested exercise, upgrades to a websocket and wires
// the connection into the trainer use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exerciseId")
	if exerciseID == "" {
		writeError(w, http.StatusBadRequest, "missing exerciseId")
		return
	}

	opened, err := h.service.Open(r.Context(), exerciseID)
	if err != nil {
		h.log.Warn("open exercise failed", "exercise", exerciseID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := h.log.With("conn", uuid.NewString(), "exercise", exerciseID)
	log.Info("ws connected")
	defer log.Info("ws disconnected")

	events, cancel, err := h.service.Subscribe(r.Context(), exerciseID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(r.Context(), exerciseID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "opened", Payload: opened}

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handle(r, exerciseID, inbound)
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, exerciseID string, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "input":
		var payload inputPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid input payload")
		}
		state, err := h.service.Input(ctx, exerciseID, payload.BlankID, payload.Text)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "blank", Payload: blankPayload{
			BlankID: payload.BlankID,
			State:   state,
			Phase:   state.Phase(),
		}}
	case "check":
		var payload checkPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid check payload")
		}
		outcome, err := h.service.Check(ctx, exerciseID, payload.BlankID, payload.Position)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "checkResult", Payload: outcome}
	case "navigate":
		var payload navigatePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid navigate payload")
		}
		view, err := h.service.Navigate(ctx, exerciseID, payload.Index)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "view", Payload: view}
	case "reset":
		view, err := h.service.Reset(ctx, exerciseID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "view", Payload: view}
	default:
		return errorMessage("unsupported message type")
	}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
