package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAgeDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 0, AgeDays(now, now))
	require.Equal(t, 0, AgeDays(now.Add(-23*time.Hour), now))
	require.Equal(t, 1, AgeDays(now.Add(-25*time.Hour), now))
	require.Equal(t, 6, AgeDays(now.AddDate(0, 0, -6), now))
	// a future timestamp must not yield a negative age
	require.Equal(t, 0, AgeDays(now.Add(48*time.Hour), now))
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		daysAgo int
		aging   int
		urgent  int
		want    Status
	}{
		{daysAgo: 0, aging: 7, urgent: 14, want: StatusFresh},
		{daysAgo: 6, aging: 7, urgent: 14, want: StatusFresh},
		{daysAgo: 7, aging: 7, urgent: 14, want: StatusWarning},
		{daysAgo: 13, aging: 7, urgent: 14, want: StatusWarning},
		{daysAgo: 14, aging: 7, urgent: 14, want: StatusCritical},
		{daysAgo: 100, aging: 7, urgent: 14, want: StatusCritical},
		{daysAgo: 3, aging: 2, urgent: 5, want: StatusWarning},
	}
	for _, tc := range cases {
		got := StatusOf(now.AddDate(0, 0, -tc.daysAgo), now, tc.aging, tc.urgent)
		require.Equalf(t, tc.want, got, "daysAgo=%d aging=%d urgent=%d", tc.daysAgo, tc.aging, tc.urgent)
	}
}

func TestBadge(t *testing.T) {
	require.Equal(t, "", Badge(StatusFresh))
	require.Equal(t, "Aging", Badge(StatusWarning))
	require.Equal(t, "Urgent", Badge(StatusCritical))
}

func TestLowStock(t *testing.T) {
	cases := []struct {
		quantity string
		want     bool
	}{
		{"2", true},
		{"1", true},
		{"1.5", true},
		{"0.5", true},
		{"0", false},
		{"-5", false},
		{"3", false},
		{"some", false},
		{"", false},
		{" 2 ", true},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, LowStock(tc.quantity), "quantity=%q", tc.quantity)
	}
}
