// internal/codes/resolver.go

// Package codes decodes bureau-coded fields into canonical descriptions.
// Resolution never fails: an unknown code comes back unchanged so downstream
// consumers and the report never see an empty string where a code was.
package codes

import "strings"

// Resolve returns the canonical description for a coded value, or the code
// itself when no mapping exists.
func Resolve(category Category, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "N/A"
	}
	table, ok := tables[category]
	if !ok {
		return code
	}
	if desc, ok := table[code]; ok {
		return desc
	}
	return code
}

// IsVehicleLoanType reports whether an account-type code belongs to the
// vehicle-loan family.
func IsVehicleLoanType(code string) bool {
	return VehicleLoanFamily[strings.TrimSpace(code)]
}
