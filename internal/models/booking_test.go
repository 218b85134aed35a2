package models

import "testing"

func TestBookingCanCancel(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{BookingStatusPending, true},
		{BookingStatusConfirmed, true},
		{BookingStatusCancelled, false},
		{BookingStatusCompleted, false},
	}

	for _, tc := range cases {
		b := Booking{Status: tc.status}
		if got := b.CanCancel(); got != tc.want {
			t.Fatalf("status %s: expected CanCancel=%v, got %v", tc.status, tc.want, got)
		}
	}
}

func TestVehicleTypeEnum(t *testing.T) {
	for _, v := range AllowedVehicleTypes {
		if !IsValidVehicleType(v) {
			t.Fatalf("%s must be a valid vehicle type", v)
		}
	}
	if IsValidVehicleType("plane") {
		t.Fatalf("plane must not be a valid vehicle type")
	}
}

func TestFeatureAllowList(t *testing.T) {
	if !IsAllowedFeature("covered") {
		t.Fatalf("covered must be allowed")
	}
	if IsAllowedFeature("helipad") {
		t.Fatalf("helipad must not be allowed")
	}
}
