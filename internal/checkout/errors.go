package checkout

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrIncompleteInformation = errors.New("contact and shipping information is incomplete")
	ErrNoShippingSelected    = errors.New("no shipping rate selected")
	ErrUnknownRate           = errors.New("selected rate is not part of the quoted list")
	ErrStaleQuote            = errors.New("quoted rates are stale for the current address")
	IllegalTransitionError   = errors.New("illegal transition of checkout status")
)
