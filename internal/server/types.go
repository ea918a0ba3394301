package server

import (
	"time"

	"busfahrer/internal/deck"
)

const (
	phaseLobby        = "lobby"
	phasePyramid      = "pyramid"
	phaseDistribution = "distribution"
	phaseBus          = "bus"
	phaseEnded        = "ended"
)

const (
	roleTypePlayer    = "player"
	roleTypeSpectator = "spectator"
)

const (
	genderMale   = "male"
	genderFemale = "female"
	genderNone   = ""
)

const (
	directionHigher = "higher"
	directionLower  = "lower"
	directionEqual  = "equal"
)

const (
	drinkKindReceived = "received"
	drinkKindGiven    = "given"
)

const (
	drinkReasonPyramidMatch = "pyramid_match"
	drinkReasonDistribution = "distribution"
	drinkReasonJack         = "jack"
	drinkReasonQueen        = "queen"
	drinkReasonKing         = "king"
	drinkReasonFinishGlass  = "finish_glass"
	drinkReasonBusMiss      = "bus_miss"
	drinkReasonBusResult    = "bus_result"
	drinkReasonForfeit      = "forfeit"
)

type GameSummary struct {
	ID       string
	JoinCode string
	Phase    string
	Players  int
}

type Game struct {
	ID             string
	DBID           uint
	JoinCode       string
	Phase          string
	PhaseStartedAt time.Time
	CreatedAt      time.Time
	Seed           int64
	Survived       *bool
	Fault          string
	LobbyLocked    bool
	MaxPlayers     int
	KickedNames    map[string]struct{}
	PlayerDBIDs    map[int]uint
	Players        []Player
	Spectators     []Spectator
	Pyramid        []deck.Row
	Undealt        []deck.Card
	Bus            *BusState
	Ledger         []DrinkEntry
}

type Player struct {
	ID             int
	DBID           uint
	Name           string
	Gender         string
	AvatarRef      string
	Title          string
	AuthToken      string
	IsGameMaster   bool
	IsBusfahrer    bool
	Connected      bool
	Hand           []HandCard
	DrinksReceived int
	DrinksGiven    int
	FinishGlasses  int
	JoinedAt       time.Time
}

type Spectator struct {
	ID        int
	Name      string
	AvatarRef string
	AuthToken string
	Connected bool
	JoinedAt  time.Time
}

// HandCard is a dealt card with its played flag. The flag is scoped to
// the current distribution; a retry rebuilds all hands.
type HandCard struct {
	Card   deck.Card
	Played bool
}

// BusState is the phase-3 duel: a diamond layout pre-dealt face down,
// an upcard as the first reference, and a cursor over the flattened
// layout. A miss redeals everything from a fresh shuffle.
type BusState struct {
	DriverID      int
	Schedule      []int
	Cards         []deck.Card
	Upcard        deck.Card
	Position      int
	PendingDrinks int
	Round         int
	LastResult    *PredictResult
}

type PredictResult struct {
	Correct  bool      `json:"correct"`
	Card     deck.Card `json:"card"`
	Position int       `json:"position"`
}

// DrinkEntry is one in-memory ledger record; mirrored to the database
// when persistence is attached.
type DrinkEntry struct {
	FromID int
	ToID   int
	Count  int
	Reason string
	Phase  string
	At     time.Time
}
