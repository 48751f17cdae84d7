package tracker

import (
	"context"
	"fmt"

	"github.com/LeoDroves/mtga-log-client/internal/parser"
	"github.com/LeoDroves/mtga-log-client/pkg/models"
)

// handleGREBatch iterates the inner game-rules-engine messages. This is the
// only one-to-many dispatch point in the pipeline.
func (t *Tracker) handleGREBatch(ctx context.Context, msg map[string]interface{}) error {
	messages, err := requireSlice(msg, "greToClientEvent", "greToClientMessages")
	if err != nil {
		return err
	}
	for _, raw := range messages {
		inner, ok := raw.(map[string]interface{})
		if !ok {
			return missingField("greToClientEvent", "greToClientMessages")
		}
		if err := t.handleGREMessage(ctx, inner); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) handleGREMessage(ctx context.Context, msg map[string]interface{}) error {
	msgType, err := requireString(msg, "type")
	if err != nil {
		return err
	}

	switch msgType {
	case "GREMessageType_SubmitDeckReq":
		return t.handleMidMatchDeck(ctx, msg)
	case "GREMessageType_GameStateMessage":
		return t.handleGameState(ctx, msg)
	default:
		return nil
	}
}

// handleMidMatchDeck reports a deck locked in during a match (e.g. after
// sideboarding). It does not reset aggregator state.
func (t *Tracker) handleMidMatchDeck(ctx context.Context, msg map[string]interface{}) error {
	rawMain, err := requireSlice(msg, "submitDeckReq", "deck", "deckCards")
	if err != nil {
		return err
	}
	maindeck, err := cardIDList(rawMain)
	if err != nil {
		return err
	}

	sideboard := []int{}
	if rawSide, ok := parser.SliceAt(msg, "submitDeckReq", "deck", "sideboardCards"); ok {
		sideboard, err = cardIDList(rawSide)
		if err != nil {
			return err
		}
	}

	rec := models.DeckRecord{
		PlayerID:         t.curUser,
		Time:             t.logTime(),
		MaindeckCardIDs:  maindeck,
		SideboardCardIDs: sideboard,
		IsDuringMatch:    true,
	}
	t.log.Infow("Deck submission", "maindeck_size", len(rec.MaindeckCardIDs), "during_match", true)
	t.publisher.PostDeck(ctx, rec, t.lastUTCTime)
	return nil
}

// handleGameState replays one game-state delta into the aggregator: game-over
// detection, object ownership, hand contents, mulligan decisions, and the
// one-time opening hand capture. Game state exists only as this sequence of
// partial deltas, so the aggregator accumulates monotonically within a match.
func (t *Tracker) handleGameState(ctx context.Context, msg map[string]interface{}) error {
	gameState, _ := parser.MapAt(msg, "gameStateMessage")
	seatIDs, _ := parser.IntsAt(msg, "systemSeatIds")

	if err := t.maybeHandleGameOver(ctx, seatIDs, gameState); err != nil {
		return err
	}

	if objects, ok := parser.SliceAt(gameState, "gameObjects"); ok {
		for _, raw := range objects {
			obj, ok := raw.(map[string]interface{})
			if !ok {
				return missingField("gameObjects")
			}
			objType, err := requireString(obj, "type")
			if err != nil {
				return err
			}
			if objType != "GameObjectType_Card" {
				continue
			}
			owner, err := requireInt(obj, "ownerSeatId")
			if err != nil {
				return err
			}
			instanceID, err := requireInt(obj, "instanceId")
			if err != nil {
				return err
			}
			cardID, err := requireInt(obj, "overlayGrpId")
			if err != nil {
				return err
			}
			if t.objectsByOwner[owner] == nil {
				t.objectsByOwner[owner] = make(map[int]int)
			}
			t.objectsByOwner[owner][instanceID] = cardID
		}
	}

	if zones, ok := parser.SliceAt(gameState, "zones"); ok {
		for _, raw := range zones {
			zone, ok := raw.(map[string]interface{})
			if !ok {
				return missingField("zones")
			}
			zoneType, err := requireString(zone, "type")
			if err != nil {
				return err
			}
			if zoneType != "ZoneType_Hand" {
				continue
			}
			owner, err := requireInt(zone, "ownerSeatId")
			if err != nil {
				return err
			}
			instanceIDs, _ := parser.IntsAt(zone, "objectInstanceIds")
			hand := make([]int, 0, len(instanceIDs))
			for _, instanceID := range instanceIDs {
				if instanceID == 0 {
					continue
				}
				if cardID, ok := t.objectsByOwner[owner][instanceID]; ok {
					hand = append(hand, cardID)
				}
			}
			t.cardsInHand[owner] = hand
		}
	}

	turnInfo, _ := parser.MapAt(gameState, "turnInfo")
	players, _ := parser.SliceAt(gameState, "players")

	type seatMulligan struct {
		seat, count int
	}
	deciding := make(map[seatMulligan]struct{})
	for _, raw := range players {
		player, ok := raw.(map[string]interface{})
		if !ok {
			return missingField("players")
		}
		if pending, _ := parser.StringAt(player, "pendingMessageType"); pending != "ClientMessageType_MulliganResp" {
			continue
		}
		seat, err := requireInt(player, "systemSeatNumber")
		if err != nil {
			return err
		}
		count, ok := parser.IntAt(player, "mulliganCount")
		if !ok {
			count = 0
		}
		deciding[seatMulligan{seat: seat, count: count}] = struct{}{}
	}

	for pair := range deciding {
		if t.startingTeam == nil {
			if active, ok := parser.IntAt(turnInfo, "activePlayer"); ok {
				t.startingTeam = &active
			}
		}
		t.openingHandCounts[pair.seat]++

		// A new decision point (not a redelivery of the same one) is
		// detected by the mulligan count catching up with the captured
		// hand history.
		if pair.count == len(t.drawnHands[pair.seat]) {
			hand := append([]int{}, t.cardsInHand[pair.seat]...)
			t.drawnHands[pair.seat] = append(t.drawnHands[pair.seat], hand)
		}
	}

	if len(t.openingHands) == 0 && t.atOpeningUpkeep(turnInfo) {
		for owner, hand := range t.cardsInHand {
			t.openingHands[owner] = append([]int{}, hand...)
		}
	}

	return nil
}

func (t *Tracker) atOpeningUpkeep(turnInfo map[string]interface{}) bool {
	phase, _ := parser.StringAt(turnInfo, "phase")
	step, _ := parser.StringAt(turnInfo, "step")
	turn, _ := parser.IntAt(turnInfo, "turnNumber")
	return phase == "Phase_Beginning" && step == "Step_Upkeep" && turn == 1
}

// maybeHandleGameOver emits a game-result record when the game state reports
// the game-over stage. Results are scanned most-recent-first for the first
// per-game (not match-level) entry.
func (t *Tracker) maybeHandleGameOver(ctx context.Context, seatIDs []int, gameState map[string]interface{}) error {
	gameInfo, _ := parser.MapAt(gameState, "gameInfo")
	if stage, _ := parser.StringAt(gameInfo, "stage"); stage != "GameStage_GameOver" {
		return nil
	}

	results, _ := parser.SliceAt(gameInfo, "results")
	for i := len(results) - 1; i >= 0; i-- {
		result, ok := results[i].(map[string]interface{})
		if !ok {
			return missingField("gameInfo", "results")
		}
		if scope, _ := parser.StringAt(result, "scope"); scope != "MatchScope_Game" {
			continue
		}

		if len(seatIDs) == 0 {
			return fmt.Errorf("game over without system seat ids")
		}
		seatID := seatIDs[0]

		matchID, err := requireString(gameInfo, "matchID")
		if err != nil {
			return err
		}
		eventName := ""
		if t.matchID != "" && t.matchID == matchID {
			eventName = t.eventID
		}

		winningTeamID, err := requireInt(result, "winningTeamId")
		if err != nil {
			return err
		}
		winType, err := requireString(result, "result")
		if err != nil {
			return err
		}
		reason, err := requireString(result, "reason")
		if err != nil {
			return err
		}

		turnCount, ok := parser.IntAt(gameState, "turnInfo", "turnNumber")
		if !ok {
			players, _ := parser.SliceAt(gameState, "players")
			if len(players) > 0 {
				turnCount = 0
				for _, raw := range players {
					player, ok := raw.(map[string]interface{})
					if !ok {
						return missingField("players")
					}
					turns, err := requireInt(player, "turnNumber")
					if err != nil {
						return err
					}
					turnCount += turns
				}
			} else {
				turnCount = -1
			}
		}

		mulligans := t.drawnHands[seatID]
		if len(mulligans) > 0 {
			mulligans = mulligans[:len(mulligans)-1]
		}

		t.sendGameEnd(ctx, gameEnd{
			seatID:        seatID,
			matchID:       matchID,
			mulligans:     append([][]int{}, mulligans...),
			eventName:     eventName,
			onPlay:        t.startingTeam != nil && *t.startingTeam == seatID,
			won:           seatID == winningTeamID,
			winType:       winType,
			gameEndReason: reason,
			turnCount:     turnCount,
			duration:      -1,
		})
		return nil
	}

	return nil
}

func cardIDList(raw []interface{}) ([]int, error) {
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, ok := parser.AsInt(v)
		if !ok {
			return nil, fmt.Errorf("non-numeric card id %v", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
