package model

import "time"

// ConfigRelayID pins the singleton relay configuration row.
const ConfigRelayID int64 = 1

// Channel modes: normally open / normally closed.
const (
	ModoNA = "NA"
	ModoNC = "NC"
)

// ConfigRelay holds connection and channel-mode settings for the door relay
// board. Exactly one row exists, with ID = ConfigRelayID.
type ConfigRelay struct {
	ID         int64  `gorm:"primaryKey"`
	IP         string `gorm:"column:ip;not null"`
	Puerto     int    `gorm:"not null"`
	TimeoutMs  int    `gorm:"not null"`
	Reintentos int    `gorm:"not null"`
	ModoCanal1 string `gorm:"column:modo_canal_1;not null;default:'NA'"`
	ModoCanal2 string `gorm:"column:modo_canal_2;not null;default:'NA'"`
	ModoCanal3 string `gorm:"column:modo_canal_3;not null;default:'NA'"`
	ModoCanal4 string `gorm:"column:modo_canal_4;not null;default:'NA'"`
	UpdatedAt  time.Time
}

func (ConfigRelay) TableName() string { return "config_relay" }

// Modos returns the four channel modes in channel order.
func (c ConfigRelay) Modos() [4]string {
	return [4]string{c.ModoCanal1, c.ModoCanal2, c.ModoCanal3, c.ModoCanal4}
}
