package phoenix

import "encoding/json"

// Protocol event names.
const (
	eventJoin            = "phx_join"
	eventLeave           = "phx_leave"
	eventReply           = "phx_reply"
	eventError           = "phx_error"
	eventClose           = "phx_close"
	eventHeartbeat       = "heartbeat"
	eventPostgresChanges = "postgres_changes"
	eventSystem          = "system"
	eventPresenceState   = "presence_state"
	eventPresenceDiff    = "presence_diff"
	eventAccessToken     = "access_token"
)

// heartbeatTopic is the reserved topic for socket-level heartbeats.
const heartbeatTopic = "phoenix"

// protocolVersion selects the JSON object message encoding.
const protocolVersion = "1.0.0"

// Message is one frame of the Phoenix channels protocol.
type Message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
	JoinRef string          `json:"join_ref,omitempty"`
}

// replyPayload is the body of a phx_reply.
type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response,omitempty"`
}

type postgresChange struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

type joinConfig struct {
	PostgresChanges []postgresChange `json:"postgres_changes"`
}

type joinPayload struct {
	Config      joinConfig `json:"config"`
	AccessToken string     `json:"access_token,omitempty"`
}

func newJoinPayload(schema, table, token string) json.RawMessage {
	p := joinPayload{
		Config: joinConfig{
			PostgresChanges: []postgresChange{{Event: "*", Schema: schema, Table: table}},
		},
		AccessToken: token,
	}
	b, _ := json.Marshal(p)
	return b
}

var emptyPayload = json.RawMessage(`{}`)

// isChange reports whether an event on a joined topic is a data change
// notification rather than channel bookkeeping.
func isChange(event string) bool {
	switch event {
	case eventReply, eventError, eventClose, eventJoin, eventLeave,
		eventSystem, eventPresenceState, eventPresenceDiff, eventAccessToken:
		return false
	}
	return true
}
