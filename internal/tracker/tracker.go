package tracker

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/LeoDroves/mtga-log-client/internal/follower"
	"github.com/LeoDroves/mtga-log-client/internal/logger"
	"github.com/LeoDroves/mtga-log-client/internal/parser"
	"github.com/LeoDroves/mtga-log-client/pkg/metrics"
	"github.com/LeoDroves/mtga-log-client/pkg/models"
)

// Publisher delivers assembled records. Implemented by api.Client; faked in
// tests.
type Publisher interface {
	PostUser(ctx context.Context, rec models.UserRecord, utcTime time.Time)
	PostGame(ctx context.Context, rec models.GameRecord, utcTime time.Time)
	PostEvent(ctx context.Context, rec models.EventRecord, utcTime time.Time)
	PostDeck(ctx context.Context, rec models.DeckRecord, utcTime time.Time)
	PostDraftPack(ctx context.Context, rec models.DraftPackRecord, utcTime time.Time)
	PostDraftPick(ctx context.Context, rec models.DraftPickRecord, utcTime time.Time)
	PostHumanDraftPick(ctx context.Context, rec models.HumanDraftPickRecord, utcTime time.Time)
	PostCollection(ctx context.Context, rec models.CollectionRecord, utcTime time.Time)
}

// accountRegexp matches the account-identity line the client writes on
// login refreshes. It can appear embedded in unrelated entries, so it is
// checked against every raw line.
var accountRegexp = regexp.MustCompile(`.*Updated account\. DisplayName:(.*), AccountID:(.*), Token:.*`)

const outputTimeLayout = "2006-01-02T15:04:05"

// Tracker is the cross-message memory of the pipeline. It owns all aggregator
// state (object ownership, hands, mulligan history, match correlation, rank
// caches) for the lifetime of the process and is mutated only by the follow
// loop's single execution context.
type Tracker struct {
	publisher Publisher
	log       logger.Logger

	curUser     string
	curLogTime  time.Time
	lastRawTime string
	lastUTCTime time.Time

	limitedRank     *string
	constructedRank *string
	opponentRank    *string
	opponentMatchID string

	// match <-> event correlation, set once per match
	matchID string
	eventID string

	startingTeam      *int
	objectsByOwner    map[int]map[int]int
	cardsInHand       map[int][]int
	openingHands      map[int][]int
	openingHandCounts map[int]int
	drawnHands        map[int][][]int

	statsMu sync.RWMutex
}

func New(publisher Publisher, log logger.Logger) *Tracker {
	return &Tracker{
		publisher:         publisher,
		log:               log,
		lastUTCTime:       time.Unix(0, 0).UTC(),
		objectsByOwner:    make(map[int]map[int]int),
		cardsInHand:       make(map[int][]int),
		openingHands:      make(map[int][]int),
		openingHandCounts: make(map[int]int),
		drawnHands:        make(map[int][][]int),
	}
}

// Reset clears all per-match aggregator state. It runs at event boundaries:
// login, draft pack, draft picks, deck submissions, and match creation.
func (t *Tracker) Reset() {
	t.objectsByOwner = make(map[int]map[int]int)
	t.cardsInHand = make(map[int][]int)
	t.openingHands = make(map[int][]int)
	t.openingHandCounts = make(map[int]int)
	t.drawnHands = make(map[int][][]int)
	t.startingTeam = nil
}

// HandleLine scans a raw line for the embedded account-identity pattern,
// independently of entry boundaries.
func (t *Tracker) HandleLine(ctx context.Context, line, rawTime string) {
	m := accountRegexp.FindStringSubmatch(line)
	if m == nil {
		return
	}

	screenName := m[1]
	t.setUser(m[2])

	rec := models.UserRecord{
		PlayerID:   t.curUser,
		ScreenName: screenName,
		RawTime:    rawTime,
	}
	t.log.Infow("Adding user", "player_id", rec.PlayerID, "screen_name", rec.ScreenName)
	t.publisher.PostUser(ctx, rec, t.lastUTCTime)
}

// HandleEntry decodes a closed entry's payload, classifies the effective
// message, and dispatches it. Returned errors are per-entry failures; the
// follow loop logs them and continues.
func (t *Tracker) HandleEntry(ctx context.Context, entry follower.Entry) error {
	t.statsMu.Lock()
	t.curLogTime = entry.LogTime
	t.lastRawTime = entry.RawTime
	t.statsMu.Unlock()

	msg, ok, err := parser.ExtractMessage(entry.Text)
	if err != nil {
		metrics.PayloadDecodeFailuresTotal.Inc()
		t.log.Debugw("Undecodable payload",
			"log_time", entry.LogTime,
			"error", err,
			"entry", entry.Text,
		)
		return nil
	}
	if !ok {
		return nil
	}

	if utc, found := parser.ExtractUTCTime(msg); found {
		t.statsMu.Lock()
		t.lastUTCTime = utc
		t.statsMu.Unlock()
	}

	switch parser.Classify(entry.Text, msg) {
	case parser.KindLogin:
		return t.handleLogin(ctx, msg)
	case parser.KindGameEnd:
		return t.handleGameEnd(ctx, msg)
	case parser.KindDraftStatus:
		return t.handleDraftStatus(ctx, msg)
	case parser.KindDraftPick:
		return t.handleDraftPick(ctx, msg)
	case parser.KindHumanDraftPick:
		return t.handleHumanDraftPick(ctx, msg)
	case parser.KindDeckSubmit:
		return t.handleDeckSubmit(ctx, msg)
	case parser.KindDeckSubmitV3:
		return t.handleDeckSubmitV3(ctx, msg)
	case parser.KindEventCompletion:
		return t.handleEventCompletion(ctx, msg)
	case parser.KindMatchRoom:
		return t.handleMatchRoom(msg)
	case parser.KindGREBatch:
		return t.handleGREBatch(ctx, msg)
	case parser.KindSelfRank:
		return t.handleSelfRank(msg)
	case parser.KindOpponentRank:
		return t.handleMatchCreated(msg)
	case parser.KindCollection:
		return t.handleCollection(ctx, msg)
	default:
		return nil
	}
}

func (t *Tracker) setUser(playerID string) {
	t.statsMu.Lock()
	t.curUser = playerID
	t.statsMu.Unlock()
}

func (t *Tracker) logTime() string {
	return t.curLogTime.Format(outputTimeLayout)
}

// Stats is a point-in-time snapshot for the status endpoint.
type Stats struct {
	PlayerID    string    `json:"player_id"`
	LastLogTime time.Time `json:"last_log_time"`
	LastUTCTime time.Time `json:"last_utc_time"`
}

func (t *Tracker) Stats() Stats {
	t.statsMu.RLock()
	defer t.statsMu.RUnlock()
	return Stats{
		PlayerID:    t.curUser,
		LastLogTime: t.curLogTime,
		LastUTCTime: t.lastUTCTime,
	}
}
