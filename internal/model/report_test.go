package model

import (
	"testing"
	"time"
)

func TestActiveWindow_Contains(t *testing.T) {
	w := ActiveWindow{StartHour: 8, EndHour: 22}

	cases := []struct {
		hour int
		want bool
	}{
		{0, false},
		{7, false},
		{8, true},
		{12, true},
		{21, true},
		{22, false},
		{23, false},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.hour); got != tc.want {
			t.Errorf("Contains(%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestReportType_Internal(t *testing.T) {
	cases := []struct {
		typ  ReportType
		want bool
	}{
		{ReportTypeRegular, true},
		{ReportTypeCustom, true},
		{ReportTypeExternal, false},
		{ReportTypeShared, false},
	}
	for _, tc := range cases {
		if got := tc.typ.Internal(); got != tc.want {
			t.Errorf("%s.Internal() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 1, 0, 1, 0, 0, time.Local)
	night := time.Date(2026, 3, 1, 23, 59, 0, 0, time.Local)
	next := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if !SameDay(morning, night) {
		t.Error("same calendar day expected")
	}
	if SameDay(night, next) {
		t.Error("midnight starts a new day")
	}
}
