package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID        uint      `gorm:"primaryKey"`
	JoinCode  string    `gorm:"size:12;uniqueIndex;not null"`
	Phase     string    `gorm:"size:32;not null"`
	Survived  *bool     `gorm:""`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Players   []Player
	Drinks    []Drink
	Events    []Event
}

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_players_game_name"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name"`
	Gender    string    `gorm:"size:16"`
	Spectator bool      `gorm:"not null;default:false"`
	IsMaster  bool      `gorm:"not null;default:false"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Drinks    []Drink   `gorm:"foreignKey:ToPlayerID"`
}

// Drink is one ledger entry: who assigned how many drinks to whom, and
// why. Forfeits on player removal land here too so totals stay auditable.
type Drink struct {
	ID           uint      `gorm:"primaryKey"`
	GameID       uint      `gorm:"index;not null"`
	FromPlayerID *uint     `gorm:"index"`
	ToPlayerID   *uint     `gorm:"index"`
	Count        int       `gorm:"not null"`
	Reason       string    `gorm:"size:32;not null"`
	Phase        string    `gorm:"size:32;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
