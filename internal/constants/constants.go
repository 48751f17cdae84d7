package constants

import "time"

// ClientVersion is reported with every submission and checked against the
// server's minimum supported version at startup.
const ClientVersion = "0.1.8"

const (
	DefaultAPIHost = "https://www.17lands.com"

	EndpointUser           = "api/account"
	EndpointDeckSubmission = "deck"
	EndpointEventResult    = "event"
	EndpointGameResult     = "game"
	EndpointDraftPack      = "pack"
	EndpointDraftPick      = "pick"
	EndpointHumanDraftPick = "human_draft_pick"
	EndpointCollection     = "collection"
	EndpointClientVersion  = "min_client_version"
)

const (
	PollInterval       = 500 * time.Millisecond
	RetryExtraTries    = 2
	RetryInterval      = 1 * time.Second
	DefaultHTTPTimeout = 30 * time.Second
)

const (
	DefaultStatusPort = 9723
)

const (
	ShutdownTimeout = 5 * time.Second
)

// TimeFormats lists every timestamp layout the Arena client has been observed
// to emit, tried in order. Reference time: Mon Jan 2 15:04:05 MST 2006.
var TimeFormats = []string{
	"2006-01-02 3:04:05 PM",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"2006/01/02 3:04:05 PM",
	"2006/01/02 15:04:05",
}
