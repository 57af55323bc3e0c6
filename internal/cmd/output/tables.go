package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter/tw"

	"github.com/agentstation/tftmeta/pkg/catalogs"
	"github.com/agentstation/tftmeta/pkg/thresholds"
	"github.com/agentstation/tftmeta/pkg/versions"
)

// SnapshotTables converts a snapshot to its summary tables: header
// properties, then per-kind counts.
func SnapshotTables(snap *catalogs.Snapshot) []Data {
	version := snap.Version
	if snap.VersionFallback {
		version += " (last known good)"
	}

	props := Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Version", version},
			{"Current Set", snap.CurrentSet},
			{"Asset Source", snap.AssetSource},
			{"Built At", snap.BuiltAt.Time.Format(time.RFC3339)},
			{"Names Indexed", strconv.Itoa(snap.NameIndex.Len())},
		},
	}

	counts := Data{
		Headers:         []string{"Kind", "Records", "From A", "From B", "Merged", "Recovered", "Dropped", "Errors"},
		ColumnAlignment: []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignLeft},
	}
	for _, kind := range catalogs.Kinds() {
		st := snap.Stats.PerKind[kind]
		errs := "-"
		if len(st.Errors) > 0 {
			errs = strings.Join(st.Errors, "; ")
		}
		counts.Rows = append(counts.Rows, []string{
			kind.String(),
			strconv.Itoa(snap.Count(kind)),
			strconv.Itoa(st.FromA),
			strconv.Itoa(st.FromB),
			strconv.Itoa(st.Merged),
			strconv.Itoa(st.Recovered),
			strconv.Itoa(st.Dropped),
			errs,
		})
	}
	return []Data{props, counts}
}

// VersionsTable lists versions newest first, marking the resolved one.
func VersionsTable(res versions.Resolution, limit int) Data {
	data := Data{Headers: []string{"Version", "Set", "Selected"}}
	for i, v := range res.Versions {
		if limit > 0 && i >= limit {
			break
		}
		selected := ""
		if v == res.Version {
			selected = "*"
		}
		data.Rows = append(data.Rows, []string{v, versions.Set(v), selected})
	}
	return data
}

// TraitTable describes a trait's breakpoints and the one reached.
func TraitTable(effects []catalogs.TraitEffect, act thresholds.Activation) Data {
	data := Data{
		Headers:         []string{"Units", "Style", "Active"},
		ColumnAlignment: []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignCenter},
	}
	for _, e := range effects {
		active := ""
		if act.IsActive() && e.MinUnitCount == act.MinUnitCount {
			active = "*"
		}
		data.Rows = append(data.Rows, []string{strconv.Itoa(e.MinUnitCount), string(e.Style), active})
	}
	return data
}
