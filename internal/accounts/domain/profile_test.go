package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatchProfile(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		patch    map[string]string
		rejected []string
	}{
		{"customer personal", RoleCustomer, map[string]string{"full_name": "Ann", "bio": "hi"}, nil},
		{"customer company field", RoleCustomer, map[string]string{"full_name": "Ann", "company_name": "Acme"}, []string{"company_name"}},
		{"owner company", RoleStorageOwner, map[string]string{"company_name": "Acme", "company_type": "llc"}, nil},
		{"owner licence field", RoleStorageOwner, map[string]string{"truck_type": "flatbed"}, []string{"truck_type"}},
		{"driver licence", RoleTruckDriver, map[string]string{"truck_type": "flatbed", "phone_no": "555"}, nil},
		{"driver company field", RoleTruckDriver, map[string]string{"company_doc": "x", "company_name": "y"}, []string{"company_doc", "company_name"}},
		{"manager branch is not self-service", RoleManager, map[string]string{"branch_id": "b2"}, []string{"branch_id"}},
		{"unknown field", RoleAdmin, map[string]string{"password": "x"}, []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := NewProfile(tt.role)
			got, err := PatchProfile(orig, tt.patch)

			if tt.rejected != nil {
				var fe *FieldsNotWritableError
				require.ErrorAs(t, err, &fe)
				require.Equal(t, tt.rejected, fe.Fields)
				require.Equal(t, tt.role, fe.Role)
				require.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.role, got.Role())
			require.Equal(t, NewProfile(tt.role), orig, "input profile must not be mutated")
		})
	}
}

func TestPatchProfile_SetsVariantFields(t *testing.T) {
	got, err := PatchProfile(NewProfile(RoleStorageOwner), map[string]string{
		"full_name":    "Olive Owner",
		"company_name": "Acme Storage",
	})
	require.NoError(t, err)

	owner := got.(*StorageOwnerProfile)
	require.Equal(t, "Olive Owner", owner.FullName)
	require.Equal(t, "Acme Storage", owner.Company.Name)
}

func TestWritableFields(t *testing.T) {
	require.Equal(t, []string{"bio", "dob", "full_name", "phone_no", "photo"}, WritableFields(RoleCustomer))
	require.Contains(t, WritableFields(RoleTruckDriver), "license_photo")
	require.NotContains(t, WritableFields(RoleTruckDriver), "company_name")
}

func TestConvertProfile(t *testing.T) {
	driver := &TruckDriverProfile{Personal: Personal{FullName: "Dee"}, License: DriverLicense{TruckType: "box"}}

	got := ConvertProfile(driver, RoleManager)
	require.Equal(t, RoleManager, got.Role())
	require.Equal(t, "Dee", PersonalOf(got).FullName)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	require.NotContains(t, string(data), "truck_type")
}

func TestDecodeProfile(t *testing.T) {
	in := &StorageOwnerProfile{Personal: Personal{FullName: "Olive"}, Company: Company{Name: "Acme"}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeProfile(RoleStorageOwner, data)
	require.NoError(t, err)
	require.Equal(t, in, out)

	empty, err := DecodeProfile(RoleCustomer, nil)
	require.NoError(t, err)
	require.Equal(t, &CustomerProfile{}, empty)

	_, err = DecodeProfile(RoleCustomer, []byte("{"))
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		require.Equal(t, r, got)
	}
	_, err := ParseRole("Business Owner")
	require.Error(t, err)

	require.True(t, RoleTruckDriver.SelfService())
	require.False(t, RoleManager.SelfService())
	require.False(t, RoleAdmin.SelfService())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
