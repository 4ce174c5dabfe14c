package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an integer quantity the indexer may encode as a JSON string or number.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Decimal parses the amount. An empty amount is zero.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(a))
}

type NFTHolding struct {
	Count         Amount `json:"count"`
	TotalSent     Amount `json:"total_sent,omitempty"`
	TotalReceived Amount `json:"total_received,omitempty"`
}

// FungibleHolding keeps the indexer's raw micro-unit balance; conversion
// happens once, when the holding is displayed.
type FungibleHolding struct {
	Balance       Amount `json:"balance"`
	TotalSent     Amount `json:"total_sent,omitempty"`
	TotalReceived Amount `json:"total_received,omitempty"`
}

// WalletBalance is one address's holdings. The zero value means "no data".
type WalletBalance struct {
	Address        string                     `json:"address,omitempty"`
	STXBalance     decimal.Decimal            `json:"stx_balance"`
	NFTHoldings    map[string]NFTHolding      `json:"nft_holdings"`
	FungibleTokens map[string]FungibleHolding `json:"fungible_tokens"`
}

func (b WalletBalance) IsEmpty() bool {
	return b.Address == "" && b.STXBalance.IsZero() && len(b.NFTHoldings) == 0 && len(b.FungibleTokens) == 0
}

// MicroToSTX converts an integer micro-unit amount to whole units.
func MicroToSTX(micro decimal.Decimal) decimal.Decimal {
	return micro.Shift(-MicroUnitExponent)
}
