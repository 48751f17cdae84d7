package models

// Output records assembled by the tracker and submitted to the collection
// API. Each record is built once, at emission time, and never mutated
// afterwards. Common trailer fields (client version, token, UTC time) are
// attached by the API client, not stored here.

type UserRecord struct {
	PlayerID   string `json:"player_id"`
	ScreenName string `json:"screen_name"`
	RawTime    string `json:"raw_time"`
}

type GameRecord struct {
	PlayerID              string  `json:"player_id"`
	EventName             string  `json:"event_name,omitempty"`
	MatchID               string  `json:"match_id"`
	Time                  string  `json:"time"`
	OnPlay                bool    `json:"on_play"`
	Won                   bool    `json:"won"`
	WinType               string  `json:"win_type"`
	GameEndReason         string  `json:"game_end_reason"`
	OpeningHand           []int   `json:"opening_hand"`
	Mulligans             [][]int `json:"mulligans"`
	MulliganCount         int     `json:"mulligan_count"`
	OpponentMulliganCount int     `json:"opponent_mulligan_count"`
	Turns                 int     `json:"turns"`
	Duration              int     `json:"duration"`
	OpponentCardIDs       []int   `json:"opponent_card_ids"`
	LimitedRank           *string `json:"limited_rank"`
	ConstructedRank       *string `json:"constructed_rank"`
	OpponentRank          *string `json:"opponent_rank"`
}

type EventRecord struct {
	PlayerID  string `json:"player_id"`
	EventName string `json:"event_name"`
	Time      string `json:"time"`
	EntryFee  bool   `json:"entry_fee"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
}

type DraftPackRecord struct {
	PlayerID   string `json:"player_id"`
	EventName  string `json:"event_name"`
	Time       string `json:"time"`
	PackNumber int    `json:"pack_number"`
	PickNumber int    `json:"pick_number"`
	CardIDs    []int  `json:"card_ids"`
}

type DraftPickRecord struct {
	PlayerID   string `json:"player_id"`
	EventName  string `json:"event_name"`
	Time       string `json:"time"`
	PackNumber int    `json:"pack_number"`
	PickNumber int    `json:"pick_number"`
	CardID     int    `json:"card_id"`
}

type HumanDraftPickRecord struct {
	PlayerID   string `json:"player_id"`
	Time       string `json:"time"`
	DraftID    string `json:"draft_id"`
	PackNumber int    `json:"pack_number"`
	PickNumber int    `json:"pick_number"`
	CardID     int    `json:"card_id"`
}

type DeckRecord struct {
	PlayerID         string `json:"player_id"`
	EventName        string `json:"event_name,omitempty"`
	Time             string `json:"time"`
	MaindeckCardIDs  []int  `json:"maindeck_card_ids"`
	SideboardCardIDs []int  `json:"sideboard_card_ids"`
	IsDuringMatch    bool   `json:"is_during_match"`
	Companion        *int   `json:"companion,omitempty"`
}

type CollectionRecord struct {
	PlayerID   string         `json:"player_id"`
	Time       string         `json:"time"`
	CardCounts map[string]int `json:"card_counts"`
}
