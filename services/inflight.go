package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/yeremiapane/restaurant-portal/utils"
)

// InFlight collapses concurrent duplicates of the same action, e.g. a double
// click on "cancel order #42": the second caller waits for and shares the
// first call's result instead of issuing another request.
type InFlight struct {
	group singleflight.Group
}

// NewInFlight returns an empty guard.
func NewInFlight() *InFlight {
	return &InFlight{}
}

// ActionKey names an action on an entity, e.g. ActionKey("order", 42, "cancel").
func ActionKey(scope string, id interface{}, action string) string {
	return fmt.Sprintf("%s:%v:%s", scope, id, action)
}

// Do runs fn unless an identical action is already running. The key is
// released once fn returns; a later call runs fn again.
func (f *InFlight) Do(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	ch := f.group.DoChan(key, fn)
	select {
	case res := <-ch:
		if res.Shared {
			utils.InfoLogger.Debugf("in-flight action %s shared its result", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
