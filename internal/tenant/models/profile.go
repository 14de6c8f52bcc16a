package models

// Partner is one business partner row cached from a tenant database. The
// core treats partner attributes as opaque payload; only the routing keys
// (SIP account, route IP, DID numbers) are interpreted.
type Partner struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	SIPAccount string   `json:"sipAccount,omitempty"`
	RouteIP    string   `json:"routeIp,omitempty"`
	Prefixes   []string `json:"prefixes,omitempty"`
}

// Profile is the per-tenant cached configuration data loaded wholesale from
// that tenant's database during a rebuild. All maps are populated once by the
// loader and read-only afterwards.
type Profile struct {
	Partners            map[int]*Partner `json:"partners,omitempty"`
	PartnerIDByName     map[string]int   `json:"partnerIdByName,omitempty"`
	PartnerBySIPAccount map[string]int   `json:"partnerBySipAccount,omitempty"`
	PartnerByRouteIP    map[string]int   `json:"partnerByRouteIp,omitempty"`
	DIDOwners           map[string]int   `json:"didOwners,omitempty"`
	PartnerDIDs         map[int][]string `json:"partnerDids,omitempty"`
	RatePlanIDs         map[int][]int    `json:"ratePlanIds,omitempty"`
}

// NewProfile returns an empty profile with all maps allocated.
func NewProfile() *Profile {
	return &Profile{
		Partners:            make(map[int]*Partner),
		PartnerIDByName:     make(map[string]int),
		PartnerBySIPAccount: make(map[string]int),
		PartnerByRouteIP:    make(map[string]int),
		DIDOwners:           make(map[string]int),
		PartnerDIDs:         make(map[int][]string),
		RatePlanIDs:         make(map[int][]int),
	}
}
