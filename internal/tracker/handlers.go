package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LeoDroves/mtga-log-client/internal/parser"
	"github.com/LeoDroves/mtga-log-client/pkg/models"
)

func missingField(path ...string) error {
	return fmt.Errorf("missing or invalid field %q", strings.Join(path, "."))
}

func requireString(msg map[string]interface{}, path ...string) (string, error) {
	s, ok := parser.StringAt(msg, path...)
	if !ok {
		return "", missingField(path...)
	}
	return s, nil
}

func requireInt(msg map[string]interface{}, path ...string) (int, error) {
	n, ok := parser.IntAt(msg, path...)
	if !ok {
		return 0, missingField(path...)
	}
	return n, nil
}

func requireMap(msg map[string]interface{}, path ...string) (map[string]interface{}, error) {
	m, ok := parser.MapAt(msg, path...)
	if !ok {
		return nil, missingField(path...)
	}
	return m, nil
}

func requireSlice(msg map[string]interface{}, path ...string) ([]interface{}, error) {
	s, ok := parser.SliceAt(msg, path...)
	if !ok {
		return nil, missingField(path...)
	}
	return s, nil
}

// handleLogin resets all aggregator state and reports the user's identity.
func (t *Tracker) handleLogin(ctx context.Context, msg map[string]interface{}) error {
	t.Reset()

	playerID, err := requireString(msg, "params", "payloadObject", "playerId")
	if err != nil {
		return err
	}
	screenName, err := requireString(msg, "params", "payloadObject", "screenName")
	if err != nil {
		return err
	}
	t.setUser(playerID)

	rec := models.UserRecord{
		PlayerID:   playerID,
		ScreenName: screenName,
		RawTime:    t.lastRawTime,
	}
	t.log.Infow("Adding user", "player_id", rec.PlayerID, "screen_name", rec.ScreenName)
	t.publisher.PostUser(ctx, rec, t.lastUTCTime)
	return nil
}

// handleGameEnd handles the direct DuelScene.GameStop message family.
func (t *Tracker) handleGameEnd(ctx context.Context, msg map[string]interface{}) error {
	blob, err := requireMap(msg, "params", "payloadObject")
	if err != nil {
		return err
	}

	seatID, err := requireInt(blob, "seatId")
	if err != nil {
		return err
	}
	matchID, err := requireString(blob, "matchId")
	if err != nil {
		return err
	}
	teamID, err := requireInt(blob, "teamId")
	if err != nil {
		return err
	}
	startingTeamID, err := requireInt(blob, "startingTeamId")
	if err != nil {
		return err
	}
	winningTeamID, err := requireInt(blob, "winningTeamId")
	if err != nil {
		return err
	}
	winType, err := requireString(blob, "winningType")
	if err != nil {
		return err
	}
	reason, err := requireString(blob, "winningReason")
	if err != nil {
		return err
	}
	turnCount, err := requireInt(blob, "turnCount")
	if err != nil {
		return err
	}
	duration, err := requireInt(blob, "secondsCount")
	if err != nil {
		return err
	}
	eventName, err := requireString(blob, "eventId")
	if err != nil {
		return err
	}

	rawHands, err := requireSlice(blob, "mulliganedHands")
	if err != nil {
		return err
	}
	mulliganedHands := make([][]int, 0, len(rawHands))
	for _, rawHand := range rawHands {
		cards, ok := rawHand.([]interface{})
		if !ok {
			return missingField("mulliganedHands")
		}
		hand := make([]int, 0, len(cards))
		for _, card := range cards {
			m, ok := card.(map[string]interface{})
			if !ok {
				return missingField("mulliganedHands")
			}
			grpID, err := requireInt(m, "grpId")
			if err != nil {
				return err
			}
			hand = append(hand, grpID)
		}
		mulliganedHands = append(mulliganedHands, hand)
	}

	t.sendGameEnd(ctx, gameEnd{
		seatID:        seatID,
		matchID:       matchID,
		mulligans:     mulliganedHands,
		eventName:     eventName,
		onPlay:        teamID == startingTeamID,
		won:           teamID == winningTeamID,
		winType:       winType,
		gameEndReason: reason,
		turnCount:     turnCount,
		duration:      duration,
	})
	return nil
}

type gameEnd struct {
	seatID        int
	matchID       string
	mulligans     [][]int
	eventName     string
	onPlay        bool
	won           bool
	winType       string
	gameEndReason string
	turnCount     int
	duration      int
}

// sendGameEnd assembles the game-result record from the triggering message
// plus aggregator state, then clears the per-match state. Both game-end
// paths (direct and GRE-derived) funnel through here.
func (t *Tracker) sendGameEnd(ctx context.Context, end gameEnd) {
	opponentID := 1
	if end.seatID == 1 {
		opponentID = 2
	}

	opponentCards := make([]int, 0, len(t.objectsByOwner[opponentID]))
	for _, cardID := range t.objectsByOwner[opponentID] {
		opponentCards = append(opponentCards, cardID)
	}

	if end.matchID != t.opponentMatchID {
		t.opponentRank = nil
	}

	openingHand := append([]int{}, t.openingHands[end.seatID]...)
	mulligans := end.mulligans
	if mulligans == nil {
		mulligans = [][]int{}
	}

	rec := models.GameRecord{
		PlayerID:              t.curUser,
		EventName:             end.eventName,
		MatchID:               end.matchID,
		Time:                  t.logTime(),
		OnPlay:                end.onPlay,
		Won:                   end.won,
		WinType:               end.winType,
		GameEndReason:         end.gameEndReason,
		OpeningHand:           openingHand,
		Mulligans:             mulligans,
		MulliganCount:         t.openingHandCounts[end.seatID] - 1,
		OpponentMulliganCount: t.openingHandCounts[opponentID] - 1,
		Turns:                 end.turnCount,
		Duration:              end.duration,
		OpponentCardIDs:       opponentCards,
		LimitedRank:           t.limitedRank,
		ConstructedRank:       t.constructedRank,
		OpponentRank:          t.opponentRank,
	}
	t.Reset()

	t.log.Infow("Completed game",
		"match_id", rec.MatchID,
		"event_name", rec.EventName,
		"won", rec.Won,
		"turns", rec.Turns,
	)
	t.publisher.PostGame(ctx, rec, t.lastUTCTime)
}

// handleEventCompletion reports the final standing of a completed event.
func (t *Tracker) handleEventCompletion(ctx context.Context, msg map[string]interface{}) error {
	eventName, err := requireString(msg, "InternalEventName")
	if err != nil {
		return err
	}
	entryFeeValue, ok := parser.ValueAt(msg, "ModuleInstanceData", "HasPaidEntry")
	if !ok {
		return missingField("ModuleInstanceData", "HasPaidEntry")
	}
	entryFee, _ := entryFeeValue.(bool)
	wins, err := requireInt(msg, "ModuleInstanceData", "WinLossGate", "CurrentWins")
	if err != nil {
		return err
	}
	losses, err := requireInt(msg, "ModuleInstanceData", "WinLossGate", "CurrentLosses")
	if err != nil {
		return err
	}

	rec := models.EventRecord{
		PlayerID:  t.curUser,
		EventName: eventName,
		Time:      t.logTime(),
		EntryFee:  entryFee,
		Wins:      wins,
		Losses:    losses,
	}
	t.log.Infow("Event submission", "event_name", rec.EventName, "wins", rec.Wins, "losses", rec.Losses)
	t.publisher.PostEvent(ctx, rec, t.lastUTCTime)
	return nil
}

// handleMatchRoom records the match id <-> event name correlation used to
// attribute later GRE-derived game results.
func (t *Tracker) handleMatchRoom(msg map[string]interface{}) error {
	roomConfig, ok := parser.MapAt(msg, "matchGameRoomStateChangedEvent", "gameRoomInfo", "gameRoomConfig")
	if !ok {
		return nil
	}

	eventID, hasEvent := parser.StringAt(roomConfig, "eventId")
	matchID, hasMatch := parser.StringAt(roomConfig, "matchId")
	if hasEvent && hasMatch {
		t.matchID = matchID
		t.eventID = eventID
	}
	return nil
}

// handleDraftStatus handles the bot-draft status blob; only the
// Draft.PickNext status carries a fresh pack to report.
func (t *Tracker) handleDraftStatus(ctx context.Context, msg map[string]interface{}) error {
	status, err := requireString(msg, "DraftStatus")
	if err != nil {
		return err
	}
	if status != "Draft.PickNext" {
		return nil
	}

	t.Reset()

	draftID, err := requireString(msg, "DraftId")
	if err != nil {
		return err
	}
	eventName, err := eventNameFromDraftID(draftID)
	if err != nil {
		return err
	}
	packNumber, err := requireInt(msg, "PackNumber")
	if err != nil {
		return err
	}
	pickNumber, err := requireInt(msg, "PickNumber")
	if err != nil {
		return err
	}
	rawPack, err := requireSlice(msg, "DraftPack")
	if err != nil {
		return err
	}
	cardIDs := make([]int, 0, len(rawPack))
	for _, raw := range rawPack {
		id, ok := parser.AsInt(raw)
		if !ok {
			return missingField("DraftPack")
		}
		cardIDs = append(cardIDs, id)
	}

	rec := models.DraftPackRecord{
		PlayerID:   t.curUser,
		EventName:  eventName,
		Time:       t.logTime(),
		PackNumber: packNumber,
		PickNumber: pickNumber,
		CardIDs:    cardIDs,
	}
	t.log.Infow("Draft pack", "event_name", rec.EventName, "pack", rec.PackNumber, "pick", rec.PickNumber)
	t.publisher.PostDraftPack(ctx, rec, t.lastUTCTime)
	return nil
}

func (t *Tracker) handleDraftPick(ctx context.Context, msg map[string]interface{}) error {
	t.Reset()

	inner, err := requireMap(msg, "params")
	if err != nil {
		return err
	}
	draftID, err := requireString(inner, "draftId")
	if err != nil {
		return err
	}
	eventName, err := eventNameFromDraftID(draftID)
	if err != nil {
		return err
	}
	packNumber, err := requireInt(inner, "packNumber")
	if err != nil {
		return err
	}
	pickNumber, err := requireInt(inner, "pickNumber")
	if err != nil {
		return err
	}
	cardID, err := requireInt(inner, "cardId")
	if err != nil {
		return err
	}

	rec := models.DraftPickRecord{
		PlayerID:   t.curUser,
		EventName:  eventName,
		Time:       t.logTime(),
		PackNumber: packNumber,
		PickNumber: pickNumber,
		CardID:     cardID,
	}
	t.log.Infow("Draft pick", "event_name", rec.EventName, "pack", rec.PackNumber, "pick", rec.PickNumber)
	t.publisher.PostDraftPick(ctx, rec, t.lastUTCTime)
	return nil
}

func (t *Tracker) handleHumanDraftPick(ctx context.Context, msg map[string]interface{}) error {
	t.Reset()

	inner, err := requireMap(msg, "params")
	if err != nil {
		return err
	}
	draftID, err := requireString(inner, "draftId")
	if err != nil {
		return err
	}
	packNumber, err := requireInt(inner, "packNumber")
	if err != nil {
		return err
	}
	pickNumber, err := requireInt(inner, "pickNumber")
	if err != nil {
		return err
	}
	cardID, err := requireInt(inner, "cardId")
	if err != nil {
		return err
	}

	rec := models.HumanDraftPickRecord{
		PlayerID:   t.curUser,
		Time:       t.logTime(),
		DraftID:    draftID,
		PackNumber: packNumber,
		PickNumber: pickNumber,
		CardID:     cardID,
	}
	t.log.Infow("Human draft pick", "draft_id", rec.DraftID, "pack", rec.PackNumber, "pick", rec.PickNumber)
	t.publisher.PostHumanDraftPick(ctx, rec, t.lastUTCTime)
	return nil
}

// handleDeckSubmit handles Event.DeckSubmit: the deck is a nested JSON
// document whose card lists carry explicit quantities.
func (t *Tracker) handleDeckSubmit(ctx context.Context, msg map[string]interface{}) error {
	t.Reset()

	inner, err := requireMap(msg, "params")
	if err != nil {
		return err
	}
	eventName, err := requireString(inner, "eventName")
	if err != nil {
		return err
	}
	deckInfo, err := decodeDeckField(inner)
	if err != nil {
		return err
	}
	maindeck, err := expandQuantifiedDecklist(deckInfo, "mainDeck")
	if err != nil {
		return err
	}
	sideboard, err := expandQuantifiedDecklist(deckInfo, "sideboard")
	if err != nil {
		return err
	}

	rec := models.DeckRecord{
		PlayerID:         t.curUser,
		EventName:        eventName,
		Time:             t.logTime(),
		MaindeckCardIDs:  maindeck,
		SideboardCardIDs: sideboard,
		IsDuringMatch:    false,
	}
	t.log.Infow("Deck submission", "event_name", rec.EventName, "maindeck_size", len(rec.MaindeckCardIDs))
	t.publisher.PostDeck(ctx, rec, t.lastUTCTime)
	return nil
}

// handleDeckSubmitV3 handles Event.DeckSubmitV3: card lists are flat
// alternating (card id, count) pairs.
func (t *Tracker) handleDeckSubmitV3(ctx context.Context, msg map[string]interface{}) error {
	t.Reset()

	inner, err := requireMap(msg, "params")
	if err != nil {
		return err
	}
	eventName, err := requireString(inner, "eventName")
	if err != nil {
		return err
	}
	deckInfo, err := decodeDeckField(inner)
	if err != nil {
		return err
	}
	rawMain, err := requireSlice(deckInfo, "mainDeck")
	if err != nil {
		return err
	}
	maindeck, err := ExpandDecklistV3(rawMain)
	if err != nil {
		return err
	}
	rawSide, err := requireSlice(deckInfo, "sideboard")
	if err != nil {
		return err
	}
	sideboard, err := ExpandDecklistV3(rawSide)
	if err != nil {
		return err
	}

	var companion *int
	if id, ok := parser.IntAt(deckInfo, "companionGRPId"); ok {
		companion = &id
	}

	rec := models.DeckRecord{
		PlayerID:         t.curUser,
		EventName:        eventName,
		Time:             t.logTime(),
		MaindeckCardIDs:  maindeck,
		SideboardCardIDs: sideboard,
		IsDuringMatch:    false,
		Companion:        companion,
	}
	t.log.Infow("Deck submission", "event_name", rec.EventName, "maindeck_size", len(rec.MaindeckCardIDs))
	t.publisher.PostDeck(ctx, rec, t.lastUTCTime)
	return nil
}

// handleSelfRank caches the local player's limited and constructed rank
// strings for inclusion in later game results.
func (t *Tracker) handleSelfRank(msg map[string]interface{}) error {
	limited := RankString(
		value(msg, "limitedClass"),
		value(msg, "limitedLevel"),
		value(msg, "limitedPercentile"),
		value(msg, "limitedLeaderboardPlace"),
		value(msg, "limitedStep"),
	)
	constructed := RankString(
		value(msg, "constructedClass"),
		value(msg, "constructedLevel"),
		value(msg, "constructedPercentile"),
		value(msg, "constructedLeaderboardPlace"),
		value(msg, "constructedStep"),
	)
	t.limitedRank = &limited
	t.constructedRank = &constructed

	if playerID, ok := parser.StringAt(msg, "playerId"); ok {
		t.setUser(playerID)
	}
	t.log.Infow("Parsed rank info",
		"player_id", t.curUser,
		"limited", limited,
		"constructed", constructed,
	)
	return nil
}

// handleMatchCreated caches the opponent's rank at match creation and resets
// per-match state for the new match.
func (t *Tracker) handleMatchCreated(msg map[string]interface{}) error {
	t.Reset()

	opponent := RankString(
		value(msg, "opponentRankingClass"),
		value(msg, "opponentRankingTier"),
		value(msg, "opponentMythicPercentile"),
		value(msg, "opponentMythicLeaderboardPlace"),
		nil,
	)
	t.opponentRank = &opponent
	t.opponentMatchID, _ = parser.StringAt(msg, "matchId")

	t.log.Infow("Parsed opponent rank info",
		"opponent_rank", opponent,
		"match_id", t.opponentMatchID,
	)
	return nil
}

// handleCollection reports the full card collection returned by an inventory
// fetch.
func (t *Tracker) handleCollection(ctx context.Context, msg map[string]interface{}) error {
	counts := make(map[string]int, len(msg))
	for cardID, raw := range msg {
		if count, ok := parser.AsInt(raw); ok {
			counts[cardID] = count
		}
	}

	rec := models.CollectionRecord{
		PlayerID:   t.curUser,
		Time:       t.logTime(),
		CardCounts: counts,
	}
	t.log.Infow("Collection submission", "cards", len(rec.CardCounts))
	t.publisher.PostCollection(ctx, rec, t.lastUTCTime)
	return nil
}

func value(msg map[string]interface{}, key string) interface{} {
	v, _ := parser.ValueAt(msg, key)
	return v
}

// decodeDeckField decodes the "deck" parameter, which is itself a JSON
// document embedded as a string.
func decodeDeckField(inner map[string]interface{}) (map[string]interface{}, error) {
	raw, err := requireString(inner, "deck")
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var deckInfo map[string]interface{}
	if err := dec.Decode(&deckInfo); err != nil {
		return nil, fmt.Errorf("undecodable deck field: %w", err)
	}
	return deckInfo, nil
}

// eventNameFromDraftID extracts the event name from a draft id of the form
// "<user>:<event name>:<draft>"; the user portion may itself contain colons.
func eventNameFromDraftID(draftID string) (string, error) {
	last := strings.LastIndex(draftID, ":")
	if last < 0 {
		return "", fmt.Errorf("malformed draft id %q", draftID)
	}
	secondLast := strings.LastIndex(draftID[:last], ":")
	if secondLast < 0 {
		return "", fmt.Errorf("malformed draft id %q", draftID)
	}
	return draftID[secondLast+1 : last], nil
}
