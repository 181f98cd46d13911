package storage

// EscrowStore is the privileged interface used by the escrow orchestrator.
// It is the only component allowed to mutate transactions and append events.
type EscrowStore interface {
	TransactionStore
	LeaseManager
	EventReader
	DisputeReader
}
