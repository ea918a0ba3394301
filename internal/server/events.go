package server

type EventPayload struct {
	GameID     string `json:"game_id,omitempty"`
	JoinCode   string `json:"join_code,omitempty"`
	PlayerName string `json:"player,omitempty"`
	PlayerID   int    `json:"player_id,omitempty"`
	TargetID   int    `json:"target_id,omitempty"`
	Phase      string `json:"phase,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RowIndex   *int   `json:"row_index,omitempty"`
	CardRank   int    `json:"card_rank,omitempty"`
	Drinks     int    `json:"drinks,omitempty"`
	Direction  string `json:"direction,omitempty"`
	Correct    *bool  `json:"correct,omitempty"`
	Survived   *bool  `json:"survived,omitempty"`
}
