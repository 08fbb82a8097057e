package langdetect

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "en"},
		{"han shortcut", "萝卜快跑扩大运营", "zh"},
		{"mixed script stays zh", "Apollo Go 自动驾驶服务上线", "zh"},
		{"too short for lingua", "ok go", "en"},
		{"english sentence", "Waymo expands its driverless ride-hailing service to another city", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.in); got != tc.want {
				t.Fatalf("Detect(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
