// Package service implements the business rules between the HTTP
// handlers and the repository layer: popularity ranking, discount
// resolution, role-shaped response assembly, the purchase workflow and
// the event lifecycle operations.
package service

import (
	"sort"

	"github.com/eonhq/eon-backend/internal/model"
)

// scoreScale spreads the sell-through ratio over an integer range so
// events can be compared without floating point.  Two events with the
// same ratio always get the same score on every storage engine.
const scoreScale = 100000

// SellThroughScore computes the popularity score of an event:
// sold_tickets * 100000 / no_of_tickets, using integer division.
// Events with zero capacity never reach here; creation validation
// rejects them.
func SellThroughScore(ev *model.Event) uint64 {
	return uint64(ev.SoldTickets) * scoreScale / uint64(ev.NoOfTickets)
}

// Rank orders events in place by descending sell-through score.  The
// sort is stable, so events with equal scores keep their prior relative
// order.  Sets of one or zero elements are left untouched.
func Rank(events []model.Event) {
	if len(events) < 2 {
		return
	}
	sort.SliceStable(events, func(i, j int) bool {
		return SellThroughScore(&events[i]) > SellThroughScore(&events[j])
	})
}
