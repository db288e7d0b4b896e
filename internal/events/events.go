// Package events carries ledger notifications to downstream consumers.
// Publishing happens after a change is durable; a failed publish never
// rolls back the ledger.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/ledger"
)

const (
	TopicEntryPosted    = "minibooks.entry_posted"
	TopicAccountChanged = "minibooks.account_changed"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Event is anything with a stable key for partitioning.
type Event interface {
	Key() string
}

type EntryLine struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type EntryPosted struct {
	EventID     string          `json:"event_id"`
	EntryID     int64           `json:"entry_id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	VATRate     ledger.VATRate  `json:"vat_rate"`
	Amount      decimal.Decimal `json:"amount"`
	Lines       []EntryLine     `json:"lines"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// JournalKey is the partition key shared by every posted entry, so
// consumers see entries in posting order.
const JournalKey = "journal"

func (e EntryPosted) Key() string { return JournalKey }

// NewEntryPosted describes a posted entry with amounts in pounds.
func NewEntryPosted(entry ledger.JournalEntry) EntryPosted {
	ev := EntryPosted{
		EventID:     uuid.Must(uuid.NewV7()).String(),
		EntryID:     entry.ID,
		Date:        entry.Date.Format(time.DateOnly),
		Description: entry.Description,
		VATRate:     entry.VATRate,
		Amount:      pounds(entry.TotalDebit()),
		OccurredAt:  entry.PostedAt,
	}
	for _, l := range entry.Lines {
		ev.Lines = append(ev.Lines, EntryLine{
			AccountCode: l.AccountCode,
			Debit:       pounds(l.Debit),
			Credit:      pounds(l.Credit),
		})
	}
	return ev
}

type AccountChanged struct {
	EventID    string         `json:"event_id"`
	Action     string         `json:"action"`
	Account    ledger.Account `json:"account"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (e AccountChanged) Key() string { return e.Account.Code }

func NewAccountChanged(action string, acct ledger.Account) AccountChanged {
	return AccountChanged{
		EventID:    uuid.Must(uuid.NewV7()).String(),
		Action:     action,
		Account:    acct,
		OccurredAt: time.Now().UTC(),
	}
}

func pounds(pence int64) decimal.Decimal {
	return decimal.New(pence, -2)
}

// LogPublisher writes each event as a JSON log line. It is the default
// when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Printf("event %s: %s", topic, data)
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
