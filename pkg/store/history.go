package store

import (
	"context"
	"fmt"

	"github.com/ha1tch/netui/pkg/messages"
)

// HistoryEntry is one stored message of a topology.
type HistoryEntry struct {
	ID         int
	TopologyID int
	ClientID   int
	MessageID  int
	Frame      messages.Frame
	Undone     bool
}

// AppendHistory stores a message a client sent.
func (s *Store) AppendHistory(ctx context.Context, topologyID, clientID, messageID int, f messages.Frame) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO topology_history(topology_id, client_id, message_type, message_id, message_data)
	VALUES(?, ?, ?, ?, ?)`, topologyID, clientID, f.Type, messageID, string(f.Data))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// MarkUndone flags or clears the stored message a client's Undo or Redo
// refers to. Marking a message that was never stored is not an error.
func (s *Store) MarkUndone(ctx context.Context, topologyID, clientID, messageID int, undone bool) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE topology_history SET undone = ?
	WHERE topology_id = ? AND client_id = ? AND message_id = ?`, undone, topologyID, clientID, messageID)
	if err != nil {
		return fmt.Errorf("mark undone: %w", err)
	}
	return nil
}

// ListHistory returns a topology's messages in the order they were stored.
func (s *Store) ListHistory(ctx context.Context, topologyID int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT topology_history_id, client_id, message_id, message_type, message_data, undone
	FROM topology_history WHERE topology_id = ? ORDER BY topology_history_id`, topologyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e := HistoryEntry{TopologyID: topologyID}
		var data string
		if err := rows.Scan(&e.ID, &e.ClientID, &e.MessageID, &e.Frame.Type, &data, &e.Undone); err != nil {
			return nil, err
		}
		e.Frame.Data = []byte(data)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Frames returns the frames of the entries that are not undone.
func Frames(entries []HistoryEntry) []messages.Frame {
	var out []messages.Frame
	for _, e := range entries {
		if !e.Undone {
			out = append(out, e.Frame)
		}
	}
	return out
}
