package databases

import (
	"context"
	"fmt"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/types"
)

// CheckCatalog scans the store for every catalog table and reports which are missing
// and which catalog columns the store lacks. Results follow catalog order.
func CheckCatalog(ctx context.Context, conn Connector, cat *catalog.Catalog) ([]types.TableCheck, error) {
	names := cat.Names()
	tables, err := conn.Scan(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	found := make(map[string]types.Table, len(tables))
	for _, t := range tables {
		found[t.Name] = t
	}

	checks := make([]types.TableCheck, 0, len(names))
	for _, name := range names {
		check := types.TableCheck{Name: name}
		table, ok := found[name]
		if !ok {
			checks = append(checks, check)
			continue
		}
		check.Present = true

		have := make(map[string]bool, len(table.Columns))
		for _, c := range table.Columns {
			have[c.Name] = true
		}
		desc, _ := cat.Resolve(name)
		for _, c := range desc.Columns() {
			if !have[c.Name] {
				check.MissingColumns = append(check.MissingColumns, c.Name)
			}
		}
		checks = append(checks, check)
	}
	return checks, nil
}
