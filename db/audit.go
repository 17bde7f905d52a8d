package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/LTPPPP/did-trust-registry/runtime"
)

// AuditLog subscribes to a runtime.EventBus and writes every event to the
// audit_log table. One AuditLog can be shared across the did.Registry,
// offchainsig.Store and trustregistry.Store event buses; each call to
// Attach registers an independent subscription.
type AuditLog struct {
	db *sql.DB
}

// NewAuditLog wraps the package-level DB connection. Call InitDB first.
func NewAuditLog() *AuditLog {
	return &AuditLog{db: DB}
}

// Attach registers the audit log as a subscriber on bus. Write failures
// are logged, not returned or panicked on: a broken audit log must never
// take down the extrinsic it's recording.
func (a *AuditLog) Attach(bus *runtime.EventBus) {
	bus.Subscribe(func(ev runtime.Event) {
		if err := a.record(ev); err != nil {
			log.Printf("audit: failed to record event %s (%s): %v", ev.ID, ev.Label, err)
		}
	})
}

func (a *AuditLog) record(ev runtime.Event) error {
	if a.db == nil {
		return nil
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = a.db.Exec(
		`INSERT INTO audit_log (event_id, topic, action_kind, payload) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_id) DO NOTHING`,
		ev.ID, ev.Topic[:], ev.Label, payload,
	)
	return err
}
