// Package models defines the shared domain types for the order service.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusExecuted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// CANCELLED is terminal; EXECUTED may only move to CANCELLED (clawback).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusExecuted || next == OrderStatusCancelled
	case OrderStatusExecuted:
		return next == OrderStatusCancelled
	}
	return false
}

// Pair is a currency-exchange pair code.
type Pair string

const (
	PairEURSEK Pair = "EURSEK"
	PairDOLSEK Pair = "DOLSEK"
	PairPOUSEK Pair = "POUSEK"
	PairSEKEUR Pair = "SEKEUR"
	PairSEKDOL Pair = "SEKDOL"
	PairSEKPOU Pair = "SEKPOU"
)

// Pairs returns all tradable pair codes in a fixed order.
func Pairs() []Pair {
	return []Pair{PairEURSEK, PairDOLSEK, PairPOUSEK, PairSEKEUR, PairSEKDOL, PairSEKPOU}
}

// IsValid reports whether p is a tradable pair.
func (p Pair) IsValid() bool {
	for _, known := range Pairs() {
		if p == known {
			return true
		}
	}
	return false
}

// Order represents a currency-exchange order in the transient order book.
type Order struct {
	ID        int64           `json:"id"`
	Pair      Pair            `json:"pair"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
