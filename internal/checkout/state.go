package checkout

import (
	"context"
	"errors"
	"fmt"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/model"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransition = errors.New("checkout step not allowed in current state")

type State int

const (
	StateIdle State = iota
	StateAwaitingPaymentMethod
	StateReady
	StateCommitting
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingPaymentMethod:
		return "awaiting_payment_method"
	case StateReady:
		return "ready"
	case StateCommitting:
		return "committing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

// CommitFunc persists a ready checkout and returns the stored sale.
type CommitFunc func(ctx context.Context, method model.PaymentMethod, received decimal.Decimal) (*model.Sale, error)

// Session walks one checkout through its states. A failed session can be
// reopened against the same cart.
type Session struct {
	state    State
	total    decimal.Decimal
	method   model.PaymentMethod
	received decimal.Decimal
	sale     *model.Sale
	err      error
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) State() State { return s.state }
func (s *Session) Sale() *model.Sale { return s.sale }
func (s *Session) Err() error { return s.err }

func (s *Session) Open(c *cart.Cart) error {
	if s.state != StateIdle && s.state != StateFailed {
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, s.state)
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	s.total = c.Total()
	s.sale, s.err = nil, nil
	s.state = StateAwaitingPaymentMethod
	return nil
}

// SelectPayment moves to Ready when the payment covers the total. A short cash
// tender keeps the session waiting for another amount.
func (s *Session) SelectPayment(method model.PaymentMethod, received decimal.Decimal) error {
	if s.state != StateAwaitingPaymentMethod && s.state != StateReady {
		return fmt.Errorf("%w: pay from %s", ErrInvalidTransition, s.state)
	}
	if err := ValidatePayment(method, received, s.total); err != nil {
		s.state = StateAwaitingPaymentMethod
		return err
	}
	s.method, s.received = method, received
	s.state = StateReady
	return nil
}

func (s *Session) Confirm(ctx context.Context, commit CommitFunc) (*model.Sale, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateCommitting
	sale, err := commit(ctx, s.method, s.received)
	if err != nil {
		s.state, s.err = StateFailed, err
		return nil, err
	}
	s.state, s.sale = StateComplete, sale
	return sale, nil
}
