package escrow

import (
	"github.com/chris/marketplace-escrow/pkg/models"
)

// Role is how the identity service classified the caller.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAdmin  Role = "ADMIN"
	RoleSystem Role = "SYSTEM"
)

// Actor is the caller of an operation. ID is an opaque user id.
type Actor struct {
	ID   string
	Role Role
}

func User(id string) Actor  { return Actor{ID: id, Role: RoleUser} }
func Admin(id string) Actor { return Actor{ID: id, Role: RoleAdmin} }
func System() Actor         { return Actor{Role: RoleSystem} }

// String is the form recorded on payment events.
func (a Actor) String() string {
	switch a.Role {
	case RoleSystem:
		return "SYSTEM"
	case RoleAdmin:
		return "ADMIN:" + a.ID
	}
	return a.ID
}

// party is a relation an actor can have to a transaction.
type party int

const (
	buyer party = iota
	seller
	admin
	system
)

func (a Actor) is(tx *models.Transaction, p party) bool {
	switch p {
	case buyer:
		return a.Role == RoleUser && a.ID != "" && a.ID == tx.BuyerId
	case seller:
		return a.Role == RoleUser && a.ID != "" && a.ID == tx.SellerId
	case admin:
		return a.Role == RoleAdmin && a.ID != ""
	case system:
		return a.Role == RoleSystem
	}
	return false
}

func permit(op string, tx *models.Transaction, a Actor, allowed ...party) error {
	for _, p := range allowed {
		if a.is(tx, p) {
			return nil
		}
	}
	return &UnauthorizedActorError{TransactionID: tx.Id, Operation: op, Actor: a.String()}
}

func requireStatus(op string, tx *models.Transaction, allowed ...models.TransactionStatus) error {
	if tx.Status.In(allowed...) {
		return nil
	}
	return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status}
}

func requireKind(op string, tx *models.Transaction, kind models.TransactionKind) error {
	if tx.Kind == kind {
		return nil
	}
	return &InvalidStateError{TransactionID: tx.Id, Operation: op, Status: tx.Status, Reason: "not a " + string(kind) + " transaction"}
}
