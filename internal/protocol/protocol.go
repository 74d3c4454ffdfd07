package protocol

import (
	"encoding/json"
	"strings"
)

// Version is the protocol spoken by this server. Clients on the same major
// version are accepted; minor bumps only add optional fields.
const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeCmd     = "CMD"
	TypeResult  = "RESULT"
)

// BaseMessage routes an incoming frame by its type before full decoding.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Compatible reports whether a client's protocol_version can talk to Version.
func Compatible(v string) bool {
	major, _, ok := strings.Cut(v, ".")
	if !ok || major == "" {
		return false
	}
	want, _, _ := strings.Cut(Version, ".")
	return major == want
}
