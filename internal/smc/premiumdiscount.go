package smc

import "github.com/Maryorwahmi/smc-forez/internal/models"

// DefaultPremiumDiscountLookback is the trailing bar count used to
// define the major high/low that premium/discount is measured against.
const DefaultPremiumDiscountLookback = 50

// PremiumDiscount partitions the trailing lookback window around its
// midpoint (equilibrium).
func PremiumDiscount(bars []models.Bar, lookback int) models.PremiumDiscountZones {
	if lookback <= 0 {
		lookback = DefaultPremiumDiscountLookback
	}
	n := len(bars)
	if n == 0 {
		return models.PremiumDiscountZones{}
	}

	start := n - lookback
	if start < 0 {
		start = 0
	}

	top, bottom := windowExtent(bars[start:])
	return models.PremiumDiscountZones{
		MajorHigh:   top,
		MajorLow:    bottom,
		Equilibrium: (top + bottom) / 2,
	}
}
