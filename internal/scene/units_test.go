package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "px to rem", in: "10px", want: "0.625rem"},
		{name: "px to rem rounding", in: "24px", want: "1.5rem"},
		{name: "hairline preserved", in: "1px", want: "1px"},
		{name: "negative hairline preserved", in: "-1px", want: "-1px"},
		{name: "zero stays zero", in: "0px", want: "0"},
		{name: "bare zero", in: "0", want: "0"},
		{name: "rem untouched", in: "1.5rem", want: "1.5rem"},
		{name: "percent untouched", in: "50%", want: "50%"},
		{name: "vh untouched", in: "100vh", want: "100vh"},
		{name: "ch untouched", in: "60ch", want: "60ch"},
		{name: "calc preserved with px converted", in: "calc(100% - 32px)", want: "calc(100% - 2rem)"},
		{name: "clamp collapses to max", in: "clamp(1rem, 4vw, 3rem)", want: "3rem"},
		{name: "clamp with px max", in: "clamp(16px, 4vw, 48px)", want: "3rem"},
		{name: "multiple px in one value", in: "4px 8px", want: "0.25rem 0.5rem"},
		{name: "hex color untouched", in: "#ff5533", want: "#ff5533"},
		{name: "odd px rounds to 4 decimals", in: "10.5px", want: "0.6563rem"},
		{name: "keyword untouched", in: "auto", want: "auto"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertValue(tt.in))
		})
	}
}

func TestConvertStyleLess(t *testing.T) {
	in := "font-size: clamp(1rem, 4vw, 3rem); padding-top: 32px; border-top-width: 1px;"
	want := "font-size: 3rem; padding-top: 2rem; border-top-width: 1px;"
	assert.Equal(t, want, ConvertStyleLess(in))
}
