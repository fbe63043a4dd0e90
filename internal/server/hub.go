package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"hagetaka/internal/protocol"
	"hagetaka/internal/store"
)

// Hub owns all WebSocket connections and dispatches their document-store
// operations. The store itself is the shared state; the hub is transport
// glue that never inspects game semantics.
type Hub struct {
	st     store.Store
	logger *slog.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
}

func NewHub(st store.Store, logger *slog.Logger) *Hub {
	return &Hub{
		st:         st,
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				for code, unsub := range client.subs {
					unsub()
					delete(client.subs, code)
				}
				delete(h.clients, client)
				client.closeSend()
			}

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			return
		}
	}
}

// Stop terminates the hub loop.
func (h *Hub) Stop() { close(h.quit) }

func (h *Hub) handleMessage(msg IncomingMessage) {
	switch msg.Envelope.Type {
	case protocol.MsgCreate:
		h.handleCreate(msg)
	case protocol.MsgGet:
		h.handleGet(msg)
	case protocol.MsgUpdate:
		h.handleUpdate(msg)
	case protocol.MsgSubscribe:
		h.handleSubscribe(msg)
	case protocol.MsgUnsubscribe:
		h.handleUnsubscribe(msg)
	default:
		h.sendError(msg, protocol.ErrKindInvalid, "unknown operation "+msg.Envelope.Type)
	}
}

func (h *Hub) handleCreate(msg IncomingMessage) {
	var req protocol.CreateMsg
	if err := json.Unmarshal(msg.Envelope.Payload, &req); err != nil || req.Code == "" {
		h.sendError(msg, protocol.ErrKindInvalid, "invalid create message")
		return
	}
	if err := h.st.Create(context.Background(), req.Code, req.Doc); err != nil {
		h.sendStoreError(msg, err)
		return
	}
	h.logger.Info("room created", "code", req.Code)
	h.sendAck(msg, protocol.MsgCreate, req.Code)
}

func (h *Hub) handleGet(msg IncomingMessage) {
	var req protocol.GetMsg
	if err := json.Unmarshal(msg.Envelope.Payload, &req); err != nil || req.Code == "" {
		h.sendError(msg, protocol.ErrKindInvalid, "invalid get message")
		return
	}
	snap, err := h.st.Get(context.Background(), req.Code)
	if err != nil {
		h.sendStoreError(msg, err)
		return
	}
	msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgDoc, msg.Envelope.Seq,
		protocol.DocMsg{Code: snap.Code, Rev: snap.Rev, Doc: snap.Data}))
}

func (h *Hub) handleUpdate(msg IncomingMessage) {
	var req protocol.UpdateMsg
	if err := json.Unmarshal(msg.Envelope.Payload, &req); err != nil || req.Code == "" || len(req.Fields) == 0 {
		h.sendError(msg, protocol.ErrKindInvalid, "invalid update message")
		return
	}
	var err error
	if req.Rev != nil {
		err = h.st.UpdateIf(context.Background(), req.Code, *req.Rev, req.Fields)
	} else {
		err = h.st.Update(context.Background(), req.Code, req.Fields)
	}
	if err != nil {
		h.sendStoreError(msg, err)
		return
	}
	h.sendAck(msg, protocol.MsgUpdate, req.Code)
}

func (h *Hub) handleSubscribe(msg IncomingMessage) {
	var req protocol.SubscribeMsg
	if err := json.Unmarshal(msg.Envelope.Payload, &req); err != nil || req.Code == "" {
		h.sendError(msg, protocol.ErrKindInvalid, "invalid subscribe message")
		return
	}
	client := msg.Client
	if _, ok := client.subs[req.Code]; ok {
		h.sendAck(msg, protocol.MsgSubscribe, req.Code)
		return
	}

	unsub, err := h.st.Subscribe(req.Code, func(snap store.Snapshot) {
		if snap.Data == nil {
			client.SendEnvelope(protocol.MustEnvelope(protocol.MsgAbsent, 0,
				protocol.AbsentMsg{Code: snap.Code}))
			return
		}
		client.SendEnvelope(protocol.MustEnvelope(protocol.MsgDoc, 0,
			protocol.DocMsg{Code: snap.Code, Rev: snap.Rev, Doc: snap.Data}))
	})
	if err != nil {
		h.sendStoreError(msg, err)
		return
	}
	client.subs[req.Code] = unsub
	h.sendAck(msg, protocol.MsgSubscribe, req.Code)
}

func (h *Hub) handleUnsubscribe(msg IncomingMessage) {
	var req protocol.UnsubscribeMsg
	if err := json.Unmarshal(msg.Envelope.Payload, &req); err != nil || req.Code == "" {
		h.sendError(msg, protocol.ErrKindInvalid, "invalid unsubscribe message")
		return
	}
	if unsub, ok := msg.Client.subs[req.Code]; ok {
		unsub()
		delete(msg.Client.subs, req.Code)
	}
	h.sendAck(msg, protocol.MsgUnsubscribe, req.Code)
}

func (h *Hub) sendAck(msg IncomingMessage, op, code string) {
	msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgAck, msg.Envelope.Seq,
		protocol.AckMsg{Op: op, Code: code}))
}

func (h *Hub) sendStoreError(msg IncomingMessage, err error) {
	kind := protocol.ErrKindInvalid
	switch {
	case errors.Is(err, store.ErrNotFound):
		kind = protocol.ErrKindNotFound
	case errors.Is(err, store.ErrExists):
		kind = protocol.ErrKindExists
	case errors.Is(err, store.ErrConflict):
		kind = protocol.ErrKindConflict
	}
	h.sendError(msg, kind, err.Error())
}

func (h *Hub) sendError(msg IncomingMessage, kind, message string) {
	msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgError, msg.Envelope.Seq,
		protocol.ErrorMsg{Kind: kind, Message: message}))
}
