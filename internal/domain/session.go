package domain

import "time"

// ResolutionStatus records how a chat session ended. Wire values are the
// literal ones stored by the original portal.
type ResolutionStatus string

const (
	ResolutionResolved   ResolutionStatus = "Resolvido"
	ResolutionUnresolved ResolutionStatus = "Não Resolvido"
	ResolutionForwarded  ResolutionStatus = "Encaminhado"
)

// ChatSession is the durable record of one finished conversation. It is
// created exactly once when a conversation reaches a terminal state and is
// never mutated afterwards.
type ChatSession struct {
	ID         string           `json:"id"`
	Client     ClientInfo       `json:"client"`
	Department Department       `json:"department"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    time.Time        `json:"endTime"`
	Transcript []Message        `json:"transcript"`
	Resolution ResolutionStatus `json:"resolution"`
	Summary    string           `json:"summary"`
}
