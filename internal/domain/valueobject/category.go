package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Category – immutable value object
// ---------------------------------------------------------------------------

// Category is the regulatory risk classification of a loan. Categories are
// totally ordered by severity; ordering drives cure/deterioration analytics.
type Category struct {
	value string
	rank  int
}

const (
	categoryNormal         = "NORMAL"
	categorySpecialMention = "SPECIAL_MENTION"
	categorySubstandard    = "SUBSTANDARD"
	categoryDoubtful       = "DOUBTFUL"
	categoryLoss           = "LOSS"
)

var (
	CategoryNormal         = Category{value: categoryNormal, rank: 0}
	CategorySpecialMention = Category{value: categorySpecialMention, rank: 1}
	CategorySubstandard    = Category{value: categorySubstandard, rank: 2}
	CategoryDoubtful       = Category{value: categoryDoubtful, rank: 3}
	CategoryLoss           = Category{value: categoryLoss, rank: 4}
)

var validCategories = map[string]Category{
	categoryNormal:         CategoryNormal,
	categorySpecialMention: CategorySpecialMention,
	categorySubstandard:    CategorySubstandard,
	categoryDoubtful:       CategoryDoubtful,
	categoryLoss:           CategoryLoss,
}

// NewCategory creates a Category from a raw string.
func NewCategory(s string) (Category, error) {
	v, ok := validCategories[s]
	if !ok {
		return Category{}, fmt.Errorf("invalid classification category: %q", s)
	}
	return v, nil
}

// String returns the string representation of the category.
func (c Category) String() string { return c.value }

// IsZero returns true if the category has not been initialised.
func (c Category) IsZero() bool { return c.value == "" }

// Equal returns true when both categories carry the same value.
func (c Category) Equal(other Category) bool { return c.value == other.value }

// WorseThan returns true when c is a more severe category than other.
func (c Category) WorseThan(other Category) bool { return c.rank > other.rank }

// BetterThan returns true when c is a less severe category than other.
func (c Category) BetterThan(other Category) bool { return c.rank < other.rank }
