package rls

import "fmt"

// Table identifies a storage table backing a tenant-owned entity.
type Table struct {
	Schema string
	Name   string
}

func (t Table) String() string {
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}

// TenantTables is the explicit registry of every table carrying a tenant_id
// column. The bootstrap installs a row-level-security policy for each entry;
// a table missing from this list is NOT protected at the engine level, so
// every new tenant-owned entity must be added here alongside its migration.
var TenantTables = []Table{
	{Schema: "public", Name: "users"},
	{Schema: "public", Name: "refresh_tokens"},
	{Schema: "public", Name: "buildings"},
	{Schema: "public", Name: "units"},
	{Schema: "public", Name: "leases"},
	{Schema: "public", Name: "maintenance_tickets"},
	{Schema: "public", Name: "work_orders"},
	{Schema: "public", Name: "invoices"},
	{Schema: "public", Name: "payments"},
	{Schema: "public", Name: "late_fee_charges"},
}
