package model

import "time"

// Puerta is a physical access point. CanalRele is the relay channel (1–4)
// that opens it; LectorIP/LectorPuerto locate its QR reader.
type Puerta struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Nombre         string `gorm:"uniqueIndex;not null"`
	Codigo         string `gorm:"uniqueIndex;not null"`
	LectorIP       *string
	LectorPuerto   *int
	CanalRele      *int
	TiempoApertura int  `gorm:"not null;default:5"`
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (Puerta) TableName() string { return "puertas" }
