package naming

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	// Thursday of ISO week 2 of 2024.
	ref := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "week and year",
			template: "Discovered {week_of_year}-{year}",
			want:     "Discovered 2-2024",
		},
		{
			name:     "all placeholders",
			template: "{year}/{month} week {week_of_year}",
			want:     "2024/1 week 2",
		},
		{
			name:     "no placeholders",
			template: "Discovered Weekly",
			want:     "Discovered Weekly",
		},
		{
			name:     "unrecognized placeholder passes through",
			template: "Discovered {week_of_year} {day}",
			want:     "Discovered 2 {day}",
		},
		{
			name:     "repeated placeholder",
			template: "{year}-{year}",
			want:     "2024-2024",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.template, ref); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestFormat_ISOYearBoundary(t *testing.T) {
	// 2024-12-30 is a Monday belonging to ISO week 1 of 2025, while the
	// calendar month is still December 2024.
	ref := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)

	got := Format("{week_of_year}-{year}-{month}", ref)
	want := "1-2025-12"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
