package order

import "fmt"

var statusRank = map[Status]int{
	StatusPending: 0,
	StatusSuccess: 1,
}

var returnStatusRank = map[ReturnStatus]int{
	ReturnPending: 0,
	ReturnPicked:  1,
	ReturnRefund:  2,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("%w: order status must be PENDING or SUCCESS", ErrValidation)
	}
	return st, nil
}

func ParseReturnStatus(s string) (ReturnStatus, error) {
	st := ReturnStatus(s)
	if _, ok := returnStatusRank[st]; !ok {
		return "", fmt.Errorf("%w: return status must be PENDING, PICKED or REFUND", ErrValidation)
	}
	return st, nil
}

// CanTransition reports whether an order may move from one status to another.
// SUCCESS is terminal; repeating the current status is allowed.
func CanTransition(from, to Status) bool {
	return statusRank[to] >= statusRank[from]
}

// CanTransitionReturn allows forward moves along PENDING, PICKED, REFUND.
func CanTransitionReturn(from, to ReturnStatus) bool {
	return returnStatusRank[to] >= returnStatusRank[from]
}
