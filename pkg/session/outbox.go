package session

import (
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
)

// Transport writes serialised frames to the relay.
type Transport interface {
	Send(frame []byte) error
}

// SetTransport attaches the connection used by Send. A nil transport makes
// Send queue until one is attached and a client id is known.
func (s *Session) SetTransport(t Transport) {
	s.transport = t
}

// Send stamps m with this client's id, a fresh message id and the current
// trace id, then writes it. Messages sent before the relay assigned a
// client id, or whose write fails, wait in order for OnClientID. In
// disconnected mode messages are logged and dropped.
func (s *Session) Send(m messages.Message) error {
	h := m.Head()
	h.Sender = s.clientID
	h.MessageID = s.MessageSeq.Next()
	h.TraceID = s.TraceID
	if mm, ok := m.(*messages.MultipleMessage); ok {
		for _, sub := range mm.Messages {
			sh := sub.Head()
			sh.Sender = s.clientID
			sh.MessageID = s.MessageSeq.Next()
			sh.TraceID = s.TraceID
		}
	}

	if s.Recording {
		if f, err := messages.FrameOf(m); err == nil {
			s.Trace = append(s.Trace, f)
		}
	}

	if s.Disconnected {
		data, err := messages.Serialize(m)
		if err != nil {
			return err
		}
		s.log.Debug(s.ctx, "offline message dropped", logging.String("frame", string(data)))
		return nil
	}

	if s.clientID == 0 || s.transport == nil {
		s.initial = append(s.initial, m)
		return nil
	}

	data, err := messages.Serialize(m)
	if err != nil {
		return err
	}
	if err := s.transport.Send(data); err != nil {
		s.log.Warn(s.ctx, "send failed, message queued",
			logging.String("type", m.TypeName()), logging.Int("message_id", h.MessageID), logging.Err(err))
		s.initial = append(s.initial, m)
	}
	return nil
}

// OnClientID records the id the relay assigned and flushes queued messages
// in the order they were sent, re-stamping the sender. The relay follows
// the id with a Snapshot taken before it read the flushed frames, so the
// queued messages are kept until that snapshot has loaded.
func (s *Session) OnClientID(id int) {
	s.clientID = id
	s.resync = append([]messages.Message(nil), s.initial...)
	s.Flush()
}

// Flush retries queued messages. It stops at the first failed write and
// keeps the rest queued.
func (s *Session) Flush() {
	if s.clientID == 0 || s.transport == nil {
		return
	}
	pending := s.initial
	s.initial = nil
	for i, m := range pending {
		m.Head().Sender = s.clientID
		if mm, ok := m.(*messages.MultipleMessage); ok {
			for _, sub := range mm.Messages {
				sub.Head().Sender = s.clientID
			}
		}
		data, err := messages.Serialize(m)
		if err != nil {
			s.log.Error(s.ctx, "queued message dropped", logging.String("type", m.TypeName()), logging.Err(err))
			continue
		}
		if err := s.transport.Send(data); err != nil {
			s.log.Warn(s.ctx, "flush interrupted", logging.Int("remaining", len(pending)-i), logging.Err(err))
			s.initial = append(pending[i:], s.initial...)
			return
		}
	}
}
