package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Classifier – domain service for regulatory arrears classification
// ---------------------------------------------------------------------------

// ClassificationBand is one row of the regulator's threshold table. A band
// applies to every DPD greater than or equal to MinDPD, up to the next band.
type ClassificationBand struct {
	Category      valueobject.Category
	ProvisionRate decimal.Decimal
	MinDPD        int
	NonAccrual    bool
}

// ClassificationPolicy is an explicit, versioned threshold table. Bands must
// be ordered by ascending MinDPD with the first band at 0.
type ClassificationPolicy struct {
	Version string
	Bands   []ClassificationBand
}

// DefaultClassificationPolicy returns the central-bank default table:
//
//	0–29    NORMAL            1%
//	30–89   SPECIAL_MENTION   5%
//	90–179  SUBSTANDARD      20%  non-accrual
//	180–359 DOUBTFUL         50%  non-accrual
//	360+    LOSS            100%  non-accrual
func DefaultClassificationPolicy() ClassificationPolicy {
	return ClassificationPolicy{
		Version: "boz-2019.1",
		Bands: []ClassificationBand{
			{MinDPD: 0, Category: valueobject.CategoryNormal, ProvisionRate: decimal.NewFromFloat(0.01)},
			{MinDPD: 30, Category: valueobject.CategorySpecialMention, ProvisionRate: decimal.NewFromFloat(0.05)},
			{MinDPD: 90, Category: valueobject.CategorySubstandard, ProvisionRate: decimal.NewFromFloat(0.20), NonAccrual: true},
			{MinDPD: 180, Category: valueobject.CategoryDoubtful, ProvisionRate: decimal.NewFromFloat(0.50), NonAccrual: true},
			{MinDPD: 360, Category: valueobject.CategoryLoss, ProvisionRate: decimal.NewFromFloat(1.00), NonAccrual: true},
		},
	}
}

// BandFor returns the band covering the given DPD. Boundaries are closed on
// the low end: DPD 30 is the first day of the second default band.
func (p ClassificationPolicy) BandFor(dpd int) ClassificationBand {
	band := p.Bands[0]
	for _, b := range p.Bands {
		if dpd >= b.MinDPD {
			band = b
		}
	}
	return band
}

// ClassificationResult is the pure outcome of classifying one loan.
type ClassificationResult struct {
	Category        valueobject.Category
	ProvisionRate   decimal.Decimal
	ProvisionAmount decimal.Decimal
	DPD             int
	NonAccrual      bool
}

// provisionTolerance is the absolute provision drift below which a
// re-evaluation is considered a no-op. Sub-cent movement is rounding noise.
var provisionTolerance = decimal.NewFromFloat(0.01)

// Classifier maps (DPD, outstanding balance) to a regulatory category and
// provision. Pure: the same inputs always produce the same result.
type Classifier struct {
	policy ClassificationPolicy
}

// NewClassifier creates a Classifier with the given policy.
func NewClassifier(policy ClassificationPolicy) *Classifier {
	return &Classifier{policy: policy}
}

// Policy returns the classifier's threshold table.
func (c *Classifier) Policy() ClassificationPolicy { return c.policy }

// Classify looks up the category for dpd and computes the provision amount
// against the outstanding balance.
func (c *Classifier) Classify(dpd int, outstandingBalance decimal.Decimal) ClassificationResult {
	band := c.policy.BandFor(dpd)
	return ClassificationResult{
		Category:        band.Category,
		ProvisionRate:   band.ProvisionRate,
		ProvisionAmount: outstandingBalance.Mul(band.ProvisionRate).Round(2),
		DPD:             dpd,
		NonAccrual:      band.NonAccrual,
	}
}

// Materially reports whether the result differs enough from the loan's
// current category and provision to warrant an audit-trail record.
func (r ClassificationResult) Materially(current valueobject.Category, currentProvision decimal.Decimal) bool {
	if !r.Category.Equal(current) {
		return true
	}
	return r.ProvisionAmount.Sub(currentProvision).Abs().GreaterThan(provisionTolerance)
}

// ReasonFor builds the human-readable audit reason for the transition from
// the loan's current category to this result.
func (r ClassificationResult) ReasonFor(current valueobject.Category) string {
	if !r.Category.Equal(current) {
		return fmt.Sprintf("DPD %d crossed into %s", r.DPD, r.Category)
	}
	return fmt.Sprintf("provision moved to %s within %s at DPD %d", r.ProvisionAmount, r.Category, r.DPD)
}
