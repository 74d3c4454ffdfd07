package world

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/kernel/model"
)

// chargesMoney reports whether commands run with flags move park cash.
func (w *World) chargesMoney(flags action.Flags) bool {
	r := w.cfg.Rules
	if r.Park.NoMoney || r.Cheats.Sandbox {
		return false
	}
	return !flags.Ghost() && !flags.Has(action.FlagNoSpend)
}

func (w *World) canAfford(cost model.Money, flags action.Flags) bool {
	if cost <= 0 || !w.chargesMoney(flags) {
		return true
	}
	return cost <= w.cash
}

// spend pays an executed cost; negative costs are refunds.
func (w *World) spend(res action.Result, flags action.Flags) {
	if res.Cost == 0 || !w.chargesMoney(flags) {
		return
	}
	w.cash -= res.Cost
	w.ledger[res.Expenditure] += res.Cost
}

func (w *World) Cash() model.Money { return w.cash }

// Ledger returns spending per expenditure name.
func (w *World) Ledger() map[string]model.Money {
	out := make(map[string]model.Money, len(w.ledger))
	for k, v := range w.ledger {
		if v != 0 {
			out[k.String()] = v
		}
	}
	return out
}
