package progress

const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeCancel    = "CANCEL"
	TypeProgress  = "PROGRESS"
	TypeDone      = "DONE"
)

// ClientMsg is any message a client sends: SUBSCRIBE first, then
// optionally CANCEL.
type ClientMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type ProgressMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	RunID           string  `json:"run_id,omitempty"`
	Fraction        float64 `json:"fraction"`
}

type DoneMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RunID           string `json:"run_id,omitempty"`
	Status          string `json:"status"`
	Digest          string `json:"digest,omitempty"`
}
