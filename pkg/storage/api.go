package storage

// ApiStore defines the read-only operations needed by the HTTP API.
type ApiStore interface {
	TransactionReader
	EventReader
	DisputeReader
}
