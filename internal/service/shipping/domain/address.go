package domain

import "strings"

// Address 是包裹的收货地址，只保留区域匹配需要的字段
type Address struct {
	Country string `json:"country"` // ISO 国家代码，如 US
	State   string `json:"state"`   // 州/省代码，如 NY
	City    string `json:"city,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

type ZoneMemberKind string

const (
	ZoneMemberCountry ZoneMemberKind = "country"
	ZoneMemberState   ZoneMemberKind = "state"
)

// ZoneMember 是区域的一个成员：一个国家或一个州
type ZoneMember struct {
	Kind    ZoneMemberKind
	Code    string
	Country string // 州成员所属的国家，用于区分不同国家的同名州代码
}

func (m ZoneMember) Matches(addr Address) bool {
	switch m.Kind {
	case ZoneMemberCountry:
		return strings.EqualFold(m.Code, addr.Country)
	case ZoneMemberState:
		if m.Country != "" && !strings.EqualFold(m.Country, addr.Country) {
			return false
		}
		return strings.EqualFold(m.Code, addr.State)
	default:
		return false
	}
}

// Zone 是一组国家或州；任一成员匹配即认为地址在区域内
type Zone struct {
	ID      int64
	Name    string
	Members []ZoneMember
}

func (z *Zone) Include(addr Address) bool {
	if z == nil {
		return false
	}
	for _, m := range z.Members {
		if m.Matches(addr) {
			return true
		}
	}
	return false
}
