package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Profile is the role-specific part of an account. Each role has its own
// variant so that, for example, a truck driver never carries company fields.
type Profile interface {
	Role() Role
	personal() *Personal
	clone() Profile
}

type Personal struct {
	FullName string `json:"full_name,omitempty"`
	PhoneNo  string `json:"phone_no,omitempty"`
	DOB      string `json:"dob,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

type Company struct {
	Name      string `json:"company_name,omitempty"`
	Phone     string `json:"company_phone,omitempty"`
	LicenseNo string `json:"company_license_no,omitempty"`
	Address   string `json:"company_address,omitempty"`
	Type      string `json:"company_type,omitempty"`
	Doc       string `json:"company_doc,omitempty"`
}

type DriverLicense struct {
	TruckType      string `json:"truck_type,omitempty"`
	DrivingLicense string `json:"driving_license,omitempty"`
	DriverAddress  string `json:"driver_address,omitempty"`
	LicensePhoto   string `json:"license_photo,omitempty"`
}

type CustomerProfile struct {
	Personal
}

type StorageOwnerProfile struct {
	Personal
	Company Company `json:"company"`
}

type TruckDriverProfile struct {
	Personal
	License DriverLicense `json:"license"`
}

type ManagerProfile struct {
	Personal
	BranchID string `json:"branch_id,omitempty"`
}

type AdminProfile struct {
	Personal
}

func (p *CustomerProfile) Role() Role     { return RoleCustomer }
func (p *StorageOwnerProfile) Role() Role { return RoleStorageOwner }
func (p *TruckDriverProfile) Role() Role  { return RoleTruckDriver }
func (p *ManagerProfile) Role() Role      { return RoleManager }
func (p *AdminProfile) Role() Role        { return RoleAdmin }

func (p *CustomerProfile) personal() *Personal     { return &p.Personal }
func (p *StorageOwnerProfile) personal() *Personal { return &p.Personal }
func (p *TruckDriverProfile) personal() *Personal  { return &p.Personal }
func (p *ManagerProfile) personal() *Personal      { return &p.Personal }
func (p *AdminProfile) personal() *Personal        { return &p.Personal }

func (p *CustomerProfile) clone() Profile     { c := *p; return &c }
func (p *StorageOwnerProfile) clone() Profile { c := *p; return &c }
func (p *TruckDriverProfile) clone() Profile  { c := *p; return &c }
func (p *ManagerProfile) clone() Profile      { c := *p; return &c }
func (p *AdminProfile) clone() Profile        { c := *p; return &c }

// PersonalOf returns a copy of the personal section shared by every variant.
func PersonalOf(p Profile) Personal {
	return *p.personal()
}

// NewProfile returns the empty profile variant for r.
func NewProfile(r Role) Profile {
	switch r {
	case RoleStorageOwner:
		return &StorageOwnerProfile{}
	case RoleTruckDriver:
		return &TruckDriverProfile{}
	case RoleManager:
		return &ManagerProfile{}
	case RoleAdmin:
		return &AdminProfile{}
	default:
		return &CustomerProfile{}
	}
}

// ConvertProfile moves p to the variant of role r, keeping the personal
// section and dropping everything specific to the old role.
func ConvertProfile(p Profile, r Role) Profile {
	out := NewProfile(r)
	if p != nil {
		*out.personal() = *p.personal()
	}
	return out
}

type setter func(Profile, string)

func personalField(set func(*Personal, string)) setter {
	return func(p Profile, v string) { set(p.personal(), v) }
}

var personalSetters = map[string]setter{
	"full_name": personalField(func(p *Personal, v string) { p.FullName = v }),
	"phone_no":  personalField(func(p *Personal, v string) { p.PhoneNo = v }),
	"dob":       personalField(func(p *Personal, v string) { p.DOB = v }),
	"bio":       personalField(func(p *Personal, v string) { p.Bio = v }),
	"photo":     personalField(func(p *Personal, v string) { p.Photo = v }),
}

func companyField(set func(*Company, string)) setter {
	return func(p Profile, v string) { set(&p.(*StorageOwnerProfile).Company, v) }
}

func licenseField(set func(*DriverLicense, string)) setter {
	return func(p Profile, v string) { set(&p.(*TruckDriverProfile).License, v) }
}

var roleSetters = map[Role]map[string]setter{
	RoleStorageOwner: {
		"company_name":       companyField(func(c *Company, v string) { c.Name = v }),
		"company_phone":      companyField(func(c *Company, v string) { c.Phone = v }),
		"company_license_no": companyField(func(c *Company, v string) { c.LicenseNo = v }),
		"company_address":    companyField(func(c *Company, v string) { c.Address = v }),
		"company_type":       companyField(func(c *Company, v string) { c.Type = v }),
		"company_doc":        companyField(func(c *Company, v string) { c.Doc = v }),
	},
	RoleTruckDriver: {
		"truck_type":      licenseField(func(l *DriverLicense, v string) { l.TruckType = v }),
		"driving_license": licenseField(func(l *DriverLicense, v string) { l.DrivingLicense = v }),
		"driver_address":  licenseField(func(l *DriverLicense, v string) { l.DriverAddress = v }),
		"license_photo":   licenseField(func(l *DriverLicense, v string) { l.LicensePhoto = v }),
	},
}

func setterFor(r Role, field string) (setter, bool) {
	if s, ok := personalSetters[field]; ok {
		return s, true
	}
	s, ok := roleSetters[r][field]
	return s, ok
}

// WritableFields lists, sorted, the fields role r may change on its own profile.
func WritableFields(r Role) []string {
	out := make([]string, 0, len(personalSetters)+len(roleSetters[r]))
	for f := range personalSetters {
		out = append(out, f)
	}
	for f := range roleSetters[r] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FieldsNotWritableError lists patch fields outside the role's writable set.
type FieldsNotWritableError struct {
	Role   Role
	Fields []string
}

func (e *FieldsNotWritableError) Error() string {
	return fmt.Sprintf("fields not writable for role %s: %s", e.Role, strings.Join(e.Fields, ", "))
}

// PatchProfile returns a copy of p with patch applied. If any key is outside
// the writable set of p's role nothing is applied and a
// *FieldsNotWritableError is returned.
func PatchProfile(p Profile, patch map[string]string) (Profile, error) {
	var rejected []string
	for field := range patch {
		if _, ok := setterFor(p.Role(), field); !ok {
			rejected = append(rejected, field)
		}
	}
	if len(rejected) > 0 {
		slices.Sort(rejected)
		return nil, &FieldsNotWritableError{Role: p.Role(), Fields: rejected}
	}

	out := p.clone()
	for field, value := range patch {
		set, _ := setterFor(out.Role(), field)
		set(out, value)
	}
	return out, nil
}

// DecodeProfile parses a profile previously encoded with json.Marshal into
// the variant of role r. Empty input yields the empty variant.
func DecodeProfile(r Role, data []byte) (Profile, error) {
	p := NewProfile(r)
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s profile: %w", r, err)
	}
	return p, nil
}
