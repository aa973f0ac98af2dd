package portaransas

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/chat"
	"github.com/eringen/portaransas/observability"
)

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

// chatFrame is one Server-Sent Event sent to chat.js.
type chatFrame struct {
	Delta string `json:"delta,omitempty"`
	Error string `json:"error,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

func writeFrame(w *echo.Response, f chatFrame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func (a *App) handleChat(c echo.Context) error {
	if a.assistant == nil {
		observability.ObserveChat("disabled")
		return c.JSON(http.StatusServiceUnavailable, chatFrame{Error: "Chat is not available."})
	}
	ip := c.RealIP()
	if !a.chatLimiter.Allow(ip) {
		observability.ObserveChat("limited")
		return c.JSON(http.StatusTooManyRequests, chatFrame{Error: "Too many messages. Please slow down."})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		observability.ObserveChat("invalid")
		return c.JSON(http.StatusBadRequest, chatFrame{Error: "Invalid request."})
	}

	// The event stream opens on the first delta so history rejected by
	// the assistant still gets a plain 400.
	ctx := c.Request().Context()
	w := c.Response()
	open := func() {
		if w.Committed {
			return
		}
		if a.analytics != nil {
			a.analytics.Record(ctx, analytics.ChatMessage, "/api/chat", ip, c.Request())
		}
		h := w.Header()
		h.Set(echo.HeaderContentType, "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
	}

	err := a.assistant.Reply(ctx, req.Messages, func(delta string) error {
		open()
		return writeFrame(w, chatFrame{Delta: delta})
	})
	if msg, ok := rejected(err); ok && !w.Committed {
		observability.ObserveChat("invalid")
		return c.JSON(http.StatusBadRequest, chatFrame{Error: msg})
	}
	if err != nil && ctx.Err() != nil {
		observability.ObserveChat("canceled")
		return nil
	}
	open()
	if err != nil {
		observability.ObserveChat("error")
		a.Log.Error().Err(err).Str("remote", ip).Msg("chat stream failed")
		return writeFrame(w, chatFrame{Error: "Sorry, the assistant is unavailable right now."})
	}
	observability.ObserveChat("ok")
	return writeFrame(w, chatFrame{Done: true})
}

// rejected maps history validation errors onto the message shown to the
// visitor.
func rejected(err error) (string, bool) {
	switch {
	case errors.Is(err, chat.ErrMessageTooLong):
		return "That message is too long.", true
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrBadRole):
		return "Please type a question.", true
	}
	return "", false
}
