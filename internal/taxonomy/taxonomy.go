// Package taxonomy maps node categories to their visual style and default
// risk tier. The tables are pure data: no I/O, no state, and total over every
// input (unrecognized categories fall back to a neutral entry).
package taxonomy

import (
	"github.com/xkilldash9x/recongraph/api/schemas"
)

// Style describes how a category is rendered and how concerning it is by
// default. Explicit per-section signals (blacklist verdicts, breach risk
// labels) override DefaultRisk at build time.
type Style struct {
	Class       string
	DefaultRisk schemas.RiskLevel
}

var styles = map[schemas.NodeCategory]Style{
	schemas.CategoryIP:             {Class: "bg-green-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskMedium},
	schemas.CategoryDomain:         {Class: "bg-indigo-400 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskLow},
	schemas.CategorySubdomain:      {Class: "bg-blue-400 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskLow},
	schemas.CategoryEmail:          {Class: "bg-amber-400 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskMedium},
	schemas.CategorySocial:         {Class: "bg-red-400 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskMedium},
	schemas.CategoryVulnerability:  {Class: "bg-rose-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskHigh},
	schemas.CategoryBreach:         {Class: "bg-red-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskHigh},
	schemas.CategorySecurityMetric: {Class: "bg-yellow-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskMedium},
	schemas.CategoryPhone:          {Class: "bg-purple-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskMedium},
	schemas.CategoryUnknownInput:   {Class: "bg-gray-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskUnknown},
}

// neutral is returned for any category the table does not know.
var neutral = Style{Class: "bg-gray-500 text-white rounded-lg p-2 shadow-lg", DefaultRisk: schemas.RiskUnknown}

// Lookup returns the style for a category, falling back to a neutral entry
// for unrecognized values. It never fails.
func Lookup(category schemas.NodeCategory) Style {
	if s, ok := styles[category]; ok {
		return s
	}
	return neutral
}

// DefaultRisk is a shorthand for Lookup(category).DefaultRisk.
func DefaultRisk(category schemas.NodeCategory) schemas.RiskLevel {
	return Lookup(category).DefaultRisk
}
