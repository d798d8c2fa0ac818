package models

import (
	"encoding/json"
	"strings"
)

// Assignee is the full profile captured when an owner or tenant is bound to
// a unit. Photo and DocumentFile carry encoded (data URL) payloads, which is
// why snapshot writes can hit the storage limit.
type Assignee struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Age            int    `json:"age,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	DocumentType   string `json:"documentType,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	Photo          string `json:"photo,omitempty"`
	DocumentFile   string `json:"documentFile,omitempty"`
}

// NormalizedEmail returns the trimmed, lowercased email used for all tenant
// identity comparisons.
func (a Assignee) NormalizedEmail() string {
	return NormalizeEmail(a.Email)
}

// NormalizeEmail canonicalizes an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Occupancy is the tenant axis of a unit as a tagged variant: a standard
// unit holds at most one tenant, a PG unit holds an ordered list bounded by
// its sharing capacity. Status derivation is implemented once per variant.
type Occupancy interface {
	// Status derives AVAILABLE/OCCUPIED from the current tenants.
	Status() string
	// TenantCount is the number of bound tenants.
	TenantCount() int
	// Label is the display name line (comma-joined for shared units).
	Label() string
	// Tenants returns the bound profiles in assignment order.
	Tenants() []Assignee
}

// SingleOccupancy is the occupancy of a standard (non-PG) unit.
type SingleOccupancy struct {
	Tenant *Assignee
}

// Status reports OCCUPIED iff a tenant with a name is present.
func (o SingleOccupancy) Status() string {
	if o.Tenant != nil && o.Tenant.FullName != "" {
		return UnitStatusOccupied
	}
	return UnitStatusAvailable
}

// TenantCount is 0 or 1 for a standard unit.
func (o SingleOccupancy) TenantCount() int {
	if o.Tenant != nil && o.Tenant.FullName != "" {
		return 1
	}
	return 0
}

// Label is the sole tenant's name, or empty.
func (o SingleOccupancy) Label() string {
	if o.Tenant == nil {
		return ""
	}
	return o.Tenant.FullName
}

// Tenants returns the sole tenant as a list.
func (o SingleOccupancy) Tenants() []Assignee {
	if o.Tenant == nil {
		return nil
	}
	return []Assignee{*o.Tenant}
}

// SharedOccupancy is the occupancy of a PG unit: an ordered tenant list and
// the sharing capacity bounding it.
type SharedOccupancy struct {
	Profiles []Assignee
	Capacity int
}

// Status reports OCCUPIED iff the tenant count has reached capacity.
func (o SharedOccupancy) Status() string {
	if len(o.Profiles) >= o.EffectiveCapacity() {
		return UnitStatusOccupied
	}
	return UnitStatusAvailable
}

// TenantCount is the number of tenants sharing the unit.
func (o SharedOccupancy) TenantCount() int {
	return len(o.Profiles)
}

// Label joins the tenant names in assignment order.
func (o SharedOccupancy) Label() string {
	names := make([]string, 0, len(o.Profiles))
	for _, p := range o.Profiles {
		if p.FullName != "" {
			names = append(names, p.FullName)
		}
	}
	return strings.Join(names, ", ")
}

// Tenants returns the tenant profiles in assignment order.
func (o SharedOccupancy) Tenants() []Assignee {
	return o.Profiles
}

// EffectiveCapacity coerces the stored capacity to at least 1.
func (o SharedOccupancy) EffectiveCapacity() int {
	if o.Capacity < 1 {
		return DefaultSharingCapacityPG
	}
	return o.Capacity
}

// HasTenant reports whether a tenant with the given normalized email is
// already bound to the unit.
func (o SharedOccupancy) HasTenant(email string) bool {
	for _, p := range o.Profiles {
		if p.NormalizedEmail() == email && email != "" {
			return true
		}
	}
	return false
}

// Occupancy decodes the unit's tenant state into its occupancy variant.
// Legacy records that only carry tenantProfile are lifted into the list
// form for PG units.
func (u *Unit) Occupancy() Occupancy {
	profiles := u.tenantProfiles()
	if u.IsPG() {
		capacity := u.SharingCapacity
		if capacity < 1 {
			capacity = DefaultSharingCapacityPG
		}
		return SharedOccupancy{Profiles: profiles, Capacity: capacity}
	}
	if len(profiles) == 0 {
		// A display name without a stored profile still counts as a tenant.
		if strings.TrimSpace(u.Tenant) != "" {
			return SingleOccupancy{Tenant: &Assignee{FullName: u.Tenant}}
		}
		return SingleOccupancy{}
	}
	first := profiles[0]
	return SingleOccupancy{Tenant: &first}
}

// SetOccupancy writes an occupancy variant back onto the persisted record:
// display label, profile columns, capacity and the derived status.
func (u *Unit) SetOccupancy(o Occupancy) error {
	tenants := o.Tenants()
	encodedList, err := json.Marshal(tenants)
	if err != nil {
		return err
	}
	u.TenantProfiles = jsonColumn(encodedList)

	if len(tenants) > 0 {
		encoded, err := json.Marshal(tenants[0])
		if err != nil {
			return err
		}
		u.TenantProfile = jsonColumn(encoded)
	} else {
		u.TenantProfile = jsonColumn([]byte("null"))
	}

	if shared, ok := o.(SharedOccupancy); ok {
		u.SharingCapacity = shared.EffectiveCapacity()
	}

	u.Tenant = o.Label()
	u.Status = o.Status()
	return nil
}

// SetTenantProfile overwrites the legacy single-profile column. Removal
// leaves it on the first remaining profile via SetOccupancy; the allocation
// path points it at the tenant just added.
func (u *Unit) SetTenantProfile(a Assignee) error {
	encoded, err := json.Marshal(a)
	if err != nil {
		return err
	}
	u.TenantProfile = jsonColumn(encoded)
	return nil
}

// tenantProfiles decodes the tenantProfiles column, falling back to the
// single tenantProfile column for records written before shared units.
func (u *Unit) tenantProfiles() []Assignee {
	raw := []byte(u.TenantProfiles.JSON)
	if len(raw) > 0 && string(raw) != "null" {
		var list []Assignee
		if err := json.Unmarshal(raw, &list); err == nil {
			return list
		}
	}
	if single := decodeAssignee(u.TenantProfile); single != nil {
		return []Assignee{*single}
	}
	return nil
}
