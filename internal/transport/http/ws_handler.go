package http

import (
	"encoding/json"
	"net/http"

	"chapter-quiz-service/internal/app"
	"chapter-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.QuizService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type subjectPayload struct {
	Subject string `json:"subject"`
}

type chapterPayload struct {
	Chapter string `json:"chapter"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type welcomePayload struct {
	ClientID string `json:"clientId"`
	Theme    string `json:"theme"`
}

type chaptersPayload struct {
	Subject  string   `json:"subject"`
	Chapters []string `json:"chapters"`
}

type resultPayload struct {
	domain.StoredResult
	ReportURL string `json:"reportUrl"`
	ChartsURL string `json:"chartsUrl"`
}

type themePayload struct {
	Theme string `json:"theme"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		http.Error(w, "missing clientId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.log.With().Str("client_id", clientID).Logger()
	h.service.Join(ctx, clientID)
	defer h.service.Leave(ctx, clientID)

	events, cancel, err := h.service.Subscribe(ctx, clientID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	out := newOutbox(16)

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(out.done)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				// unblock ReadJSON so the handler can leave
				_ = conn.Close()
				return
			}
		}
	}()

	// welcome goes out before any session event
	out.push(outboundMessage[any]{Type: "welcome", Payload: welcomePayload{ClientID: clientID, Theme: h.service.Theme()}}, nil)

	closeSignals := make(chan struct{})
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !out.push(eventMessage(ev), closeSignals) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	h.readLoop(conn, out, clientID, r)

	close(closeSignals)
	<-eventsDone
	close(out.send)
	<-out.done
}

func (h *WSHandler) readLoop(conn *websocket.Conn, out *outbox, clientID string, r *http.Request) {
	ctx := r.Context()
	fail := func(message string) bool {
		return out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}, nil)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		ok := true
		switch inbound.Type {
		case "subject":
			var payload subjectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Subject == "" {
				ok = fail("invalid subject payload")
				break
			}
			chapters, err := h.service.LoadSubject(ctx, clientID, payload.Subject)
			if err != nil {
				ok = fail(err.Error())
				break
			}
			ok = out.push(outboundMessage[any]{Type: "chapters", Payload: chaptersPayload{Subject: payload.Subject, Chapters: chapters}}, nil)
		case "chapter":
			var payload chapterPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Chapter == "" {
				ok = fail("invalid chapter payload")
				break
			}
			if _, err := h.service.LoadChapter(ctx, clientID, payload.Chapter); err != nil {
				ok = fail(err.Error())
			}
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = fail("invalid select payload")
				break
			}
			if _, err := h.service.Select(ctx, clientID, payload.Option); err != nil {
				ok = fail(err.Error())
			}
		case "next":
			if _, err := h.service.Next(ctx, clientID); err != nil {
				ok = fail(err.Error())
			}
		case "previous":
			if _, err := h.service.Previous(ctx, clientID); err != nil {
				ok = fail(err.Error())
			}
		case "submit":
			if _, err := h.service.Submit(ctx, clientID); err != nil {
				ok = fail(err.Error())
			}
		case "theme":
			ok = out.push(outboundMessage[any]{Type: "theme", Payload: themePayload{Theme: h.service.NextTheme()}}, nil)
		default:
			ok = fail("unsupported message type")
		}
		if !ok {
			return
		}
	}
}

// outbox feeds the connection's writer goroutine. done is closed when the
// writer exits, after which nothing will drain send.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{
		send: make(chan outboundMessage[any], size),
		done: make(chan struct{}),
	}
}

// push queues msg for the writer. It reports false once the writer is gone
// or stop is closed.
func (o *outbox) push(msg outboundMessage[any], stop <-chan struct{}) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	case <-stop:
		return false
	}
}

func eventMessage(ev app.Event) outboundMessage[any] {
	if ev.Type == app.EventResult && ev.Result != nil {
		return outboundMessage[any]{Type: "result", Payload: resultPayload{
			StoredResult: *ev.Result,
			ReportURL:    "/reports/" + ev.Result.ID,
			ChartsURL:    "/reports/" + ev.Result.ID + "/charts",
		}}
	}
	return outboundMessage[any]{Type: "view", Payload: ev.View}
}
