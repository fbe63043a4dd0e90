package client

import (
	"encoding/json"
	"fmt"

	"hagetaka/internal/engine"
	"hagetaka/internal/store"
)

// decodeRoom rebuilds the typed room aggregate from a stored document.
func decodeRoom(doc store.Doc) (*engine.Room, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var room engine.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}
	if room.PlayerMoves == nil {
		room.PlayerMoves = map[string]int{}
	}
	return &room, nil
}

// encodeRoom flattens the room into its document form.
func encodeRoom(room *engine.Room) (store.Doc, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("encode room: %w", err)
	}
	var doc store.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return doc, nil
}

// roomFields extracts the named top-level document fields from the room,
// for a partial update that touches only what an operation changed.
func roomFields(room *engine.Room, names ...string) (store.Fields, error) {
	doc, err := encodeRoom(room)
	if err != nil {
		return nil, err
	}
	fields := make(store.Fields, len(names))
	for _, name := range names {
		fields[name] = doc[name]
	}
	return fields, nil
}
