package outbox

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage constructor") //nolint:staticcheck // type name

type Message struct {
	id             kernel.UUID
	occurredOnUtc  time.Time
	content        []byte
	processedOnUtc *time.Time

	guard guard.ConstructorGuard
}

func NewMessage(id kernel.UUID, occurredOnUtc time.Time, content []byte) (*Message, error) {
	return RestoreMessage(id, occurredOnUtc, content, nil)
}

func RestoreMessage(id kernel.UUID, occurredOnUtc time.Time, content []byte, processedOnUtc *time.Time) (*Message, error) {
	var errList []error
	if err := id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if occurredOnUtc.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("occurredOnUtc"))
	}
	if len(content) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("content"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	m := &Message{
		id:            id,
		occurredOnUtc: occurredOnUtc.UTC(),
		content:       append([]byte(nil), content...),
		guard:         guard.NewConstructorGuard(),
	}
	if processedOnUtc != nil {
		at := processedOnUtc.UTC()
		m.processedOnUtc = &at
	}

	return m, nil
}

func (m *Message) Validate() error {
	if m == nil {
		return ErrMessageIsNotConstructed
	}
	return m.guard.Validate(ErrMessageIsNotConstructed)
}

func (m *Message) ID() kernel.UUID {
	return m.id
}

func (m *Message) OccurredOnUtc() time.Time {
	return m.occurredOnUtc
}

func (m *Message) Content() []byte {
	return append([]byte(nil), m.content...)
}

func (m *Message) ProcessedOnUtc() *time.Time {
	if m.processedOnUtc == nil {
		return nil
	}
	at := *m.processedOnUtc
	return &at
}

func (m *Message) IsProcessed() bool {
	return m.processedOnUtc != nil
}

// MarkProcessed records the publication time. It may be called only once.
func (m *Message) MarkProcessed(at time.Time) error {
	if m.IsProcessed() {
		return errs.NewStateConflictError("mark processed", "processed")
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("processedOnUtc")
	}

	at = at.UTC()
	m.processedOnUtc = &at
	return nil
}
