// Package registry provides flat O(1) lookup indices over one tree snapshot.
// A Registry is built wholesale from a tree and never patched afterwards;
// readers need no locks.
package registry

import (
	"strings"

	"tenantgrid/internal/tenant/models"
)

// Owner identifies a partner together with the tenant database that owns it.
type Owner struct {
	DB      string          `json:"db"`
	Partner *models.Partner `json:"partner"`
}

// Registry is the global lookup index for one rebuild cycle. Cycle tags the
// snapshot the registry was built from, so readers can verify they always
// observe a causally consistent (tree, registry) pair.
type Registry struct {
	Cycle uint64 `json:"cycle"`

	PartnerByID     map[int]Owner    `json:"partnerById,omitempty"`
	PartnerIDByName map[string]int   `json:"partnerIdByName,omitempty"`
	BySIPAccount    map[string]Owner `json:"bySipAccount,omitempty"`
	ByRouteIP       map[string]Owner `json:"byRouteIp,omitempty"`
	ByDID           map[string]Owner `json:"byDid,omitempty"`

	// DIDHomeDB maps a DID number to the tenant database that carries its
	// assignment, independent of the owning partner.
	DIDHomeDB map[string]string `json:"didHomeDb,omitempty"`

	TenantByDB map[string]*models.Tenant `json:"-"`
}

// Rebuild produces a brand-new, fully populated registry from a tree
// snapshot. It is a pure function of the tree: no incremental patching, no
// shared state with previous registries.
func Rebuild(root *models.Tenant, cycle uint64) *Registry {
	r := &Registry{
		Cycle:           cycle,
		PartnerByID:     make(map[int]Owner),
		PartnerIDByName: make(map[string]int),
		BySIPAccount:    make(map[string]Owner),
		ByRouteIP:       make(map[string]Owner),
		ByDID:           make(map[string]Owner),
		DIDHomeDB:       make(map[string]string),
		TenantByDB:      make(map[string]*models.Tenant),
	}
	if root == nil {
		return r
	}

	// DID assignments may reference partners held by another tenant in the
	// tree, so resolve them after every profile has been indexed.
	didPartner := make(map[string]int)

	root.Walk(func(t *models.Tenant) {
		r.TenantByDB[t.DBName] = t
		if t.Profile == nil {
			return
		}
		for id, partner := range t.Profile.Partners {
			owner := Owner{DB: t.DBName, Partner: partner}
			r.PartnerByID[id] = owner
			r.PartnerIDByName[strings.ToLower(partner.Name)] = id
			if partner.SIPAccount != "" {
				r.BySIPAccount[partner.SIPAccount] = owner
			}
			if partner.RouteIP != "" {
				r.ByRouteIP[partner.RouteIP] = owner
			}
		}
		for did, partnerID := range t.Profile.DIDOwners {
			r.DIDHomeDB[did] = t.DBName
			didPartner[did] = partnerID
		}
	})

	for did, partnerID := range didPartner {
		if owner, ok := r.PartnerByID[partnerID]; ok {
			r.ByDID[did] = owner
		}
	}
	return r
}

// LookupTenant returns the tenant node backed by dbName, or nil.
func (r *Registry) LookupTenant(dbName string) *models.Tenant {
	return r.TenantByDB[dbName]
}

// LookupPartnerByID returns the partner with the given id and its owning
// tenant database.
func (r *Registry) LookupPartnerByID(id int) (Owner, bool) {
	owner, ok := r.PartnerByID[id]
	return owner, ok
}

// LookupPartnerByName resolves a partner case-insensitively by name.
func (r *Registry) LookupPartnerByName(name string) (Owner, bool) {
	id, ok := r.PartnerIDByName[strings.ToLower(name)]
	if !ok {
		return Owner{}, false
	}
	return r.LookupPartnerByID(id)
}

// LookupByRoutingKey resolves the owning partner for a routing key, trying
// SIP account, then route IP, then DID number.
func (r *Registry) LookupByRoutingKey(key string) (Owner, bool) {
	if owner, ok := r.BySIPAccount[key]; ok {
		return owner, true
	}
	if owner, ok := r.ByRouteIP[key]; ok {
		return owner, true
	}
	owner, ok := r.ByDID[key]
	return owner, ok
}
