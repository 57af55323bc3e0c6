package tftmeta

import (
	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/thresholds"
)

// ActiveTraitStyle reports which breakpoint of traitAPIName unitCount
// reaches in snap. Unknown traits, and a nil snapshot, are inactive with
// no next breakpoint.
func (c *client) ActiveTraitStyle(traitAPIName string, unitCount int, snap *catalogs.Snapshot) thresholds.Activation {
	return ActiveTraitStyle(traitAPIName, unitCount, snap)
}

// ActiveTraitStyle is the package-level form of Client.ActiveTraitStyle
// for callers holding a snapshot but no client.
func ActiveTraitStyle(traitAPIName string, unitCount int, snap *catalogs.Snapshot) thresholds.Activation {
	if snap == nil {
		return thresholds.Inactive()
	}
	effects, ok := snap.Thresholds(traitAPIName)
	if !ok {
		return thresholds.Inactive()
	}
	return thresholds.Active(unitCount, effects)
}
