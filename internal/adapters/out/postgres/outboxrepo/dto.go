// Package outboxrepo persists outbox messages in the outbox_messages table.
package outboxrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

type MessageDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OccurredOnUtc  time.Time  `gorm:"not null;index"`
	Content        []byte     `gorm:"type:jsonb;not null"`
	ProcessedOnUtc *time.Time `gorm:"index"`
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(m *outbox.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID().Value(),
		OccurredOnUtc:  m.OccurredOnUtc().UTC(),
		Content:        m.Content(),
		ProcessedOnUtc: m.ProcessedOnUtc(),
	}
}

func toDomain(dto MessageDTO) (*outbox.Message, error) {
	id, err := kernel.UUIDFromValue(dto.ID)
	if err != nil {
		return nil, err
	}

	return outbox.RestoreMessage(id, dto.OccurredOnUtc.UTC(), dto.Content, dto.ProcessedOnUtc)
}
