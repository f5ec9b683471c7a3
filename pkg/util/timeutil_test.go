package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatWeekRange(t *testing.T) {
	require.Equal(t, "Mar 3 – Mar 9, 2025", FormatWeekRange("2025-03-03", "2025-03-09"))
	require.Equal(t, "Dec 29, 2025 – Jan 4, 2026", FormatWeekRange("2025-12-29", "2026-01-04"))
	require.Equal(t, "week-10 – week-11", FormatWeekRange("week-10", "week-11"))
	require.Equal(t, "2025-03-03", FormatWeekRange("2025-03-03", ""))
	require.Equal(t, "", FormatWeekRange("", " "))
}

func TestValidDate(t *testing.T) {
	require.True(t, ValidDate("2025-03-03"))
	require.False(t, ValidDate("2025/03/03"))
	require.False(t, ValidDate("2025-02-30"))
}
