package match

import "testing"

func TestExtractLicenseNumber(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labeled with O corrected to zero",
			text: "DL: AB1O2345",
			want: "AB102345",
		},
		{
			name: "labeled with I and O corrections",
			text: "LIC I23456O7",
			want: "12345607",
		},
		{
			name: "label wins over looser fallbacks",
			text: "STATE OF CALIFORNIA DRIVER LICENSE DL A1234567 NAME: JOHN SMITH",
			want: "A1234567",
		},
		{
			name: "id number label",
			text: "ID NO: 73491205",
			want: "73491205",
		},
		{
			name: "letter followed by digits",
			text: "REF A1234567",
			want: "A1234567",
		},
		{
			name: "bare digit run",
			text: "the card reads 123456789 at the bottom",
			want: "123456789",
		},
		{
			name: "lowercase ocr output",
			text: "dl: ab1o2345",
			want: "ab102345",
		},
		{
			name: "nothing resembling a number",
			text: "hello world",
			want: "",
		},
		{
			name: "digit run too short",
			text: "exp 2031 class c",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractLicenseNumber(tc.text); got != tc.want {
				t.Errorf("ExtractLicenseNumber(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractName(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "labeled all caps name",
			text:      "STATE OF CALIFORNIA DRIVER LICENSE DL A1234567 NAME: JOHN SMITH",
			wantFirst: "John",
			wantLast:  "Smith",
		},
		{
			name:      "labeled mixed case name",
			text:      "CARDHOLDER: Jane Doe",
			wantFirst: "Jane",
			wantLast:  "Doe",
		},
		{
			name:      "comma separated caps",
			text:      "NAME: SMITH, JOHN",
			wantFirst: "Smith",
			wantLast:  "John",
		},
		{
			name:      "unlabeled adjacent capitalized words",
			text:      "issued to Jane Doe yesterday",
			wantFirst: "Jane",
			wantLast:  "Doe",
		},
		{
			name: "digits fail validation",
			text: "NAME: X7 Y9",
		},
		{
			name: "single letter fails validation",
			text: "NAME: J SMITH",
		},
		{
			name: "no name at all",
			text: "123456 789",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first, last := ExtractName(tc.text)
			if first != tc.wantFirst || last != tc.wantLast {
				t.Errorf("ExtractName(%q) = (%q, %q), want (%q, %q)",
					tc.text, first, last, tc.wantFirst, tc.wantLast)
			}
		})
	}
}
