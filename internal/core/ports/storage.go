package ports

import "github.com/iyow2233/capstone/internal/core/domain"

// SessionStore persists run history.
type SessionStore interface {
	// SaveSession records (or updates) the session parameters.
	SaveSession(session *domain.AttackSession) error

	// SaveNetworks records the networks discovered by a scan.
	SaveNetworks(sessionID string, networks []domain.NetworkRecord) error

	// SaveAttack records the final state of one network attack.
	SaveAttack(sessionID string, attack *domain.NetworkAttack) error

	// Close closes the storage connection.
	Close() error
}
