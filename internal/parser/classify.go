package parser

import "strings"

// Kind tags an effective message with the single handler responsible for it.
type Kind int

const (
	KindUnmatched Kind = iota
	KindLogin
	KindGameEnd
	KindDraftStatus
	KindDraftPick
	KindHumanDraftPick
	KindDeckSubmit
	KindDeckSubmitV3
	KindEventCompletion
	KindMatchRoom
	KindGREBatch
	KindSelfRank
	KindOpponentRank
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindGameEnd:
		return "game_end"
	case KindDraftStatus:
		return "draft_status"
	case KindDraftPick:
		return "draft_pick"
	case KindHumanDraftPick:
		return "human_draft_pick"
	case KindDeckSubmit:
		return "deck_submit"
	case KindDeckSubmitV3:
		return "deck_submit_v3"
	case KindEventCompletion:
		return "event_completion"
	case KindMatchRoom:
		return "match_room"
	case KindGREBatch:
		return "gre_batch"
	case KindSelfRank:
		return "self_rank"
	case KindOpponentRank:
		return "opponent_rank"
	case KindCollection:
		return "collection"
	default:
		return "unmatched"
	}
}

// collectionMarker appears in the raw entry text of inventory fetch
// responses; the response body itself has no distinguishing shape.
const collectionMarker = " PlayerInventory.GetPlayerCardsV3 "

// Classify inspects the shape of an effective message and picks the handler
// for it. Predicates run in a fixed priority order and the first match wins;
// message shapes are not mutually exclusive by construction, so the order is
// load-bearing and must not be rearranged.
func Classify(rawText string, msg map[string]interface{}) Kind {
	switch {
	case ValueMatches(msg, "Client.Connected", "params", "messageName"):
		return KindLogin
	case ValueMatches(msg, "DuelScene.GameStop", "params", "messageName"):
		return KindGameEnd
	case hasKey(msg, "DraftStatus"):
		return KindDraftStatus
	case ValueMatches(msg, "Draft.MakePick", "method"):
		return KindDraftPick
	case ValueMatches(msg, "Draft.MakeHumanDraftPick", "method"):
		return KindHumanDraftPick
	case ValueMatches(msg, "Event.DeckSubmit", "method"):
		return KindDeckSubmit
	case ValueMatches(msg, "Event.DeckSubmitV3", "method"):
		return KindDeckSubmitV3
	case ValueMatches(msg, "DoneWithMatches", "CurrentEventState"):
		return KindEventCompletion
	case hasKey(msg, "matchGameRoomStateChangedEvent"):
		return KindMatchRoom
	case hasGREMessages(msg):
		return KindGREBatch
	case hasKey(msg, "limitedStep"):
		return KindSelfRank
	case hasKey(msg, "opponentRankingClass"):
		return KindOpponentRank
	case strings.Contains(rawText, collectionMarker) && !hasKey(msg, "method"):
		return KindCollection
	default:
		return KindUnmatched
	}
}

func hasKey(msg map[string]interface{}, key string) bool {
	_, ok := msg[key]
	return ok
}

func hasGREMessages(msg map[string]interface{}) bool {
	if !hasKey(msg, "greToClientEvent") {
		return false
	}
	_, ok := ValueAt(msg, "greToClientEvent", "greToClientMessages")
	return ok
}
