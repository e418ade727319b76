package invoicer

import (
	"github.com/elevatehq/invoicer/id"
	"github.com/elevatehq/invoicer/sequence"
	"github.com/elevatehq/invoicer/types"
)

// Re-export common types for convenience so users don't have to import
// the types and id packages.

// Money is re-exported from the types package.
type Money = types.Money

// Entity is re-exported from the types package.
type Entity = types.Entity

// ID is the primary identifier type for Invoicer entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// Re-export Money helpers
var (
	KSH            = types.KSH
	Zero           = types.Zero
	Sum            = types.Sum
	AmountOf       = types.AmountOf
	FormatCurrency = types.FormatCurrency
)

// Re-export Entity constructor
var NewEntity = types.NewEntity

// FormatNumber renders a sequence value as a display number, INV-00001
// style. Values past five digits widen naturally.
var FormatNumber = sequence.Format
