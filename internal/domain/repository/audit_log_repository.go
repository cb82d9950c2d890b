package repository

import (
	"go-clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindByActor(db *gorm.DB, actorType string, actorID int64) ([]entity.AuditLog, error)
}
