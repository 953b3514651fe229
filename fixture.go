package access

import "time"

// SyntheticProfiles is the fixed demo dataset served when the driver
// collection is structurally empty or unreachable. It keeps a fresh
// deployment's dashboard non-blank. It must never stand in for a query
// that came back empty due to filtering.
func SyntheticProfiles() []*CompositeProfile {
	created := time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)
	driverPerms, _ := defaultsFor(DefaultRolePermissions(), "driver")

	d1 := &CompositeProfile{
		ID: "D001",
		Driver: &DriverRecord{
			ID:        "D001",
			Name:      "Samir Haddad",
			Phone:     "+971-50-555-0101",
			UserID:    "U101",
			VehicleID: "V201",
			Status:    StatusActive,
		},
		Identity: &Identity{
			ID:          "U101",
			Email:       "samir.haddad@example.com",
			RoleID:      "driver",
			DisplayName: "Samir Haddad",
			Status:      StatusActive,
			Permissions: driverPerms.Clone(),
			CreatedAt:   created,
		},
		Vehicle: &VehicleRecord{
			ID:     "V201",
			Plate:  "DXB A 11223",
			Make:   "Toyota",
			Model:  "Camry",
			Status: StatusActive,
		},
		Permissions: driverPerms.Clone(),
	}

	d2 := &CompositeProfile{
		ID: "D002",
		Driver: &DriverRecord{
			ID:        "D002",
			Name:      "Lena Fischer",
			Phone:     "+971-50-555-0102",
			UserID:    "U102",
			VehicleID: "V202",
			Status:    StatusActive,
		},
		Identity: &Identity{
			ID:          "U102",
			Email:       "lena.fischer@example.com",
			RoleID:      "driver",
			DisplayName: "Lena Fischer",
			Status:      StatusActive,
			Permissions: driverPerms.Clone(),
			CreatedAt:   created,
		},
		Vehicle: &VehicleRecord{
			ID:     "V202",
			Plate:  "DXB B 44556",
			Make:   "Hyundai",
			Model:  "Sonata",
			Status: StatusActive,
		},
		Permissions: driverPerms.Clone(),
	}

	return []*CompositeProfile{d1, d2}
}
