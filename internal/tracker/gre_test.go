package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeoDroves/mtga-log-client/internal/follower"
)

func greBatch(inner string) string {
	return `{"greToClientEvent": {"greToClientMessages": [` + inner + `]}}`
}

// One complete game seen through GRE deltas: opponent rank at match
// creation, room correlation, opening hand with one mulligan, ownership of
// both players' cards, and the game-over report.
func TestTracker_GREGameFlow(t *testing.T) {
	tr, pub := newTestTracker()
	tr.setUser("PID-1")

	handle(t, tr, `{"opponentRankingClass": "Mythic", "opponentRankingTier": 1, "opponentMythicPercentile": 97.1, "matchId": "M-GRE"}`)
	handle(t, tr, `{"matchGameRoomStateChangedEvent": {"gameRoomInfo": {"gameRoomConfig": {"eventId": "PremierDraft_ABC", "matchId": "M-GRE"}}}}`)

	// Initial hands dealt; both players deciding on mulligans.
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameObjects": [
				{"type": "GameObjectType_Card", "ownerSeatId": 1, "instanceId": 10, "overlayGrpId": 100},
				{"type": "GameObjectType_Card", "ownerSeatId": 1, "instanceId": 11, "overlayGrpId": 101},
				{"type": "GameObjectType_Card", "ownerSeatId": 2, "instanceId": 20, "overlayGrpId": 900},
				{"type": "GameObjectType_Token", "ownerSeatId": 2, "instanceId": 21, "overlayGrpId": 901}
			],
			"zones": [{"type": "ZoneType_Hand", "ownerSeatId": 1, "objectInstanceIds": [10, 11]}],
			"players": [{"systemSeatNumber": 1, "pendingMessageType": "ClientMessageType_MulliganResp", "mulliganCount": 0}],
			"turnInfo": {"activePlayer": 1}
		}}`))

	// Seat 1 mulliganed into a fresh hand.
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameObjects": [
				{"type": "GameObjectType_Card", "ownerSeatId": 1, "instanceId": 12, "overlayGrpId": 102},
				{"type": "GameObjectType_Card", "ownerSeatId": 1, "instanceId": 13, "overlayGrpId": 103}
			],
			"zones": [{"type": "ZoneType_Hand", "ownerSeatId": 1, "objectInstanceIds": [0, 12, 13, 999]}],
			"players": [{"systemSeatNumber": 1, "pendingMessageType": "ClientMessageType_MulliganResp", "mulliganCount": 1}]
		}}`))

	// Kept hand; turn one upkeep freezes the opening hands.
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"turnInfo": {"phase": "Phase_Beginning", "step": "Step_Upkeep", "turnNumber": 1}
		}}`))

	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"turnInfo": {"turnNumber": 9},
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M-GRE", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]}
		}}`))

	require.Len(t, pub.games, 1)
	game := pub.games[0]
	assert.Equal(t, "M-GRE", game.MatchID)
	assert.Equal(t, "PremierDraft_ABC", game.EventName)
	assert.True(t, game.Won)
	assert.True(t, game.OnPlay)
	assert.Equal(t, "ResultType_WinLoss", game.WinType)
	assert.Equal(t, "Reason_Game", game.GameEndReason)
	assert.Equal(t, 9, game.Turns)
	assert.Equal(t, -1, game.Duration)

	// Opening hand is the hand held at the first upkeep; the zero and the
	// never-resolved instance id are skipped.
	assert.Equal(t, []int{102, 103}, game.OpeningHand)
	// Two hand presentations, so one mulligan; only the pre-mulligan hand
	// is reported in the history.
	assert.Equal(t, 1, game.MulliganCount)
	assert.Equal(t, [][]int{{100, 101}}, game.Mulligans)
	// Only the real card object counts toward the opponent's seen cards.
	assert.Equal(t, []int{900}, game.OpponentCardIDs)
	require.NotNil(t, game.OpponentRank)
	assert.Equal(t, "Mythic-1-97.1-None-None", *game.OpponentRank)
}

func TestTracker_GREGameOver_ClearsStateForNextGame(t *testing.T) {
	tr, pub := newTestTracker()

	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameObjects": [{"type": "GameObjectType_Card", "ownerSeatId": 2, "instanceId": 20, "overlayGrpId": 900}]
		}}`))
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M-A", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 2, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]},
			"turnInfo": {"turnNumber": 4}
		}}`))
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M-B", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]},
			"turnInfo": {"turnNumber": 6}
		}}`))

	require.Len(t, pub.games, 2)
	assert.Equal(t, []int{900}, pub.games[0].OpponentCardIDs)
	assert.Empty(t, pub.games[1].OpponentCardIDs)
}

func TestTracker_GREGameOver_MatchScopeSkipped(t *testing.T) {
	tr, pub := newTestTracker()

	// A match-level result alone must not produce a game record.
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M", "results": [
				{"scope": "MatchScope_Match", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]}
		}}`))

	assert.Empty(t, pub.games)
}

func TestTracker_GREGameOver_LatestGameResultWins(t *testing.T) {
	tr, pub := newTestTracker()

	// Results accumulate across games of a match; the newest per-game
	// entry is the one that just finished.
	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [2],
		"gameStateMessage": {
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"},
				{"scope": "MatchScope_Game", "winningTeamId": 2, "result": "ResultType_WinLoss", "reason": "Reason_Concede"}
			]},
			"turnInfo": {"turnNumber": 3}
		}}`))

	require.Len(t, pub.games, 1)
	assert.True(t, pub.games[0].Won)
	assert.Equal(t, "Reason_Concede", pub.games[0].GameEndReason)
}

func TestTracker_GREGameOver_NoSeatIDsIsError(t *testing.T) {
	tr, _ := newTestTracker()

	err := tr.HandleEntry(context.Background(), follower.Entry{
		Text: greBatch(`{"type": "GREMessageType_GameStateMessage",
			"gameStateMessage": {
				"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M", "results": [
					{"scope": "MatchScope_Game", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
				]}
			}}`),
		LogTime: testLogTime,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seat")
}

func TestTracker_GREGameOver_TurnCountFallsBackToPlayerSum(t *testing.T) {
	tr, pub := newTestTracker()

	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"players": [
				{"systemSeatNumber": 1, "turnNumber": 5},
				{"systemSeatNumber": 2, "turnNumber": 4}
			],
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 1, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]}
		}}`))

	require.Len(t, pub.games, 1)
	assert.Equal(t, 9, pub.games[0].Turns)
}

func TestTracker_GREGameOver_NoTurnDataReportsNegativeOne(t *testing.T) {
	tr, pub := newTestTracker()

	handle(t, tr, greBatch(`{"type": "GREMessageType_GameStateMessage", "systemSeatIds": [1],
		"gameStateMessage": {
			"gameInfo": {"stage": "GameStage_GameOver", "matchID": "M", "results": [
				{"scope": "MatchScope_Game", "winningTeamId": 2, "result": "ResultType_WinLoss", "reason": "Reason_Game"}
			]}
		}}`))

	require.Len(t, pub.games, 1)
	assert.Equal(t, -1, pub.games[0].Turns)
}

func TestTracker_GREMidMatchDeck(t *testing.T) {
	tr, pub := newTestTracker()
	tr.setUser("PID-1")

	handle(t, tr, greBatch(`{"type": "GREMessageType_SubmitDeckReq",
		"submitDeckReq": {"deck": {"deckCards": [100, 100, 200], "sideboardCards": [300]}}}`))

	require.Len(t, pub.decks, 1)
	deck := pub.decks[0]
	assert.Equal(t, []int{100, 100, 200}, deck.MaindeckCardIDs)
	assert.Equal(t, []int{300}, deck.SideboardCardIDs)
	assert.True(t, deck.IsDuringMatch)
}

func TestTracker_GREMidMatchDeck_SideboardOptional(t *testing.T) {
	tr, pub := newTestTracker()

	handle(t, tr, greBatch(`{"type": "GREMessageType_SubmitDeckReq",
		"submitDeckReq": {"deck": {"deckCards": [100]}}}`))

	require.Len(t, pub.decks, 1)
	assert.Equal(t, []int{100}, pub.decks[0].MaindeckCardIDs)
	assert.Empty(t, pub.decks[0].SideboardCardIDs)
}

func TestTracker_GREUnknownMessageTypeIgnored(t *testing.T) {
	tr, pub := newTestTracker()

	handle(t, tr, greBatch(`{"type": "GREMessageType_UIMessage"}`))

	assert.Empty(t, pub.games)
	assert.Empty(t, pub.decks)
}
