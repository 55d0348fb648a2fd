/*
signals.go - Observer interface for guest-count state changes

PURPOSE:
  Booking-flow UI components need to react when the guest count changes,
  when it becomes locked, and when an edit is rejected because the count
  is already locked. The store owns an explicit subscription list instead
  of pushing events through any UI-specific bus, so the pricing engine and
  tests stay decoupled from presentation.

SIGNALS:
  CountChanged:  the value was written through SetCount, SetAndLock, or Unlock
  CountLocked:   a lock reason was applied (Lock or SetAndLock)
  ChangeBlocked: a SetCount call was rejected because the state is locked

Observers are invoked synchronously after the local cache write, in
subscription order. They must not call back into the store.
*/
package guestcount

// Observer receives guest-count state signals for a user.
type Observer interface {
	CountChanged(userID string, state State)
	CountLocked(userID string, state State)
	ChangeBlocked(userID string, state State)
}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	OnChanged func(userID string, state State)
	OnLocked  func(userID string, state State)
	OnBlocked func(userID string, state State)
}

func (o ObserverFuncs) CountChanged(userID string, state State) {
	if o.OnChanged != nil {
		o.OnChanged(userID, state)
	}
}

func (o ObserverFuncs) CountLocked(userID string, state State) {
	if o.OnLocked != nil {
		o.OnLocked(userID, state)
	}
}

func (o ObserverFuncs) ChangeBlocked(userID string, state State) {
	if o.OnBlocked != nil {
		o.OnBlocked(userID, state)
	}
}
