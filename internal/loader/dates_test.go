package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    DateOrder
		wantErr bool
	}{
		{"", OrderAuto, false},
		{"auto", OrderAuto, false},
		{"dmy", OrderDayFirst, false},
		{"MDY", OrderMonthFirst, false},
		{" dmy ", OrderDayFirst, false},
		{"ymd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDateOrder(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		order   DateOrder
		want    time.Time
		wantErr bool
	}{
		{
			name:  "iso with seconds",
			input: "2024-12-25 07:30:00",
			order: OrderAuto,
			want:  time.Date(2024, 12, 25, 7, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso t separator",
			input: "2024-12-25T07:30:00",
			order: OrderAuto,
			want:  time.Date(2024, 12, 25, 7, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso date only",
			input: "2024-12-25",
			order: OrderAuto,
			want:  time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "day first slash",
			input: "25/12/2024 07:30",
			order: OrderDayFirst,
			want:  time.Date(2024, 12, 25, 7, 30, 0, 0, time.UTC),
		},
		{
			name:  "month first slash",
			input: "12/25/2024 07:30",
			order: OrderMonthFirst,
			want:  time.Date(2024, 12, 25, 7, 30, 0, 0, time.UTC),
		},
		{
			name:  "day first dash",
			input: "25-12-2024 07:30:00",
			order: OrderDayFirst,
			want:  time.Date(2024, 12, 25, 7, 30, 0, 0, time.UTC),
		},
		{
			name:  "ambiguous slash date needs a resolved order",
			input: "05/06/2024 07:30",
			order: OrderAuto,

			wantErr: true,
		},
		{
			name:    "day over twelve rejected under month-first order",
			input:   "25/12/2024",
			order:   OrderMonthFirst,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			order:   OrderDayFirst,
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not a date",
			order:   OrderDayFirst,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.input, tt.order)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestInferDateOrder(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    DateOrder
		wantErr string
	}{
		{
			name:    "day over twelve in first field",
			samples: []string{"05/06/2024 10:00", "25/12/2024 10:00"},
			want:    OrderDayFirst,
		},
		{
			name:    "day over twelve in second field",
			samples: []string{"12/25/2024 10:00"},
			want:    OrderMonthFirst,
		},
		{
			name:    "iso only files need no order",
			samples: []string{"2024-12-25 10:00", "2024-12-26 10:00"},
			want:    OrderAuto,
		},
		{
			name:    "iso rows ignored next to slash evidence",
			samples: []string{"2024-01-01", "25/12/2024"},
			want:    OrderDayFirst,
		},
		{
			name:    "conflicting evidence",
			samples: []string{"25/12/2024", "12/25/2024"},
			wantErr: "conflicting",
		},
		{
			name:    "no evidence at all",
			samples: []string{"05/06/2024", "01/02/2024"},
			wantErr: "ambiguous",
		},
		{
			name:    "dates invalid under either order carry no evidence",
			samples: []string{"13/13/2024"},
			wantErr: "ambiguous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inferDateOrder(tt.samples)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
