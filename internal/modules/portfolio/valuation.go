package portfolio

import (
	"github.com/aristath/portfolio-tracker/internal/quotes"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// valuation holds the exact totals behind a set of enriched positions.
type valuation struct {
	positions  []EnrichedPosition
	totalValue decimal.Decimal
	totalCost  decimal.Decimal
}

func (v valuation) pnl() decimal.Decimal {
	return v.totalValue.Sub(v.totalCost)
}

func (v valuation) pnlPct() decimal.Decimal {
	return percentOf(v.pnl(), v.totalCost)
}

// value prices every position and derives market value, cost, P&L and weight.
// Weights are a share of total market value; a zero total uses a divisor of 1
// so every weight comes out 0.
func value(positions []Position, prices map[string]quotes.Quote) valuation {
	type row struct {
		pos    Position
		quote  quotes.Quote
		market decimal.Decimal
		cost   decimal.Decimal
	}

	rows := make([]row, 0, len(positions))
	totalValue := decimal.Zero
	totalCost := decimal.Zero

	for _, p := range positions {
		q := prices[p.Symbol]
		qty := decimal.NewFromFloat(p.Qty)
		market := decimal.NewFromFloat(q.Price).Mul(qty)
		cost := decimal.NewFromFloat(p.AvgCost).Mul(qty)

		totalValue = totalValue.Add(market)
		totalCost = totalCost.Add(cost)
		rows = append(rows, row{pos: p, quote: q, market: market, cost: cost})
	}

	divisor := totalValue
	if !divisor.IsPositive() {
		divisor = decimal.NewFromInt(1)
	}

	enriched := make([]EnrichedPosition, 0, len(rows))
	for _, r := range rows {
		pnl := r.market.Sub(r.cost)
		enriched = append(enriched, EnrichedPosition{
			Symbol:      r.pos.Symbol,
			Name:        r.pos.Name,
			Qty:         r.pos.Qty,
			AvgCost:     r.pos.AvgCost,
			Price:       r.quote.Price,
			PriceSource: r.quote.Source,
			MarketValue: r.market.InexactFloat64(),
			CostBasis:   r.cost.InexactFloat64(),
			PnL:         pnl.InexactFloat64(),
			PnLPct:      percentOf(pnl, r.cost).InexactFloat64(),
			Weight:      r.market.Div(divisor).Mul(hundred).InexactFloat64(),
		})
	}

	return valuation{positions: enriched, totalValue: totalValue, totalCost: totalCost}
}

// percentOf returns part/whole*100, or 0 when whole is 0.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
