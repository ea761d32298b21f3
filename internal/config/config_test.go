package config

import "testing"

func TestPaymentsEnabledRequiresBothKeys(t *testing.T) {
	cases := []struct {
		name   string
		keyID  string
		secret string
		want   bool
	}{
		{"both present", "rzp_test_key", "secret", true},
		{"missing secret", "rzp_test_key", "", false},
		{"missing key id", "", "secret", false},
		{"neither", "", "", false},
	}
	for _, tc := range cases {
		cfg := &Config{RazorpayKeyID: tc.keyID, RazorpayKeySecret: tc.secret}
		if got := cfg.PaymentsEnabled(); got != tc.want {
			t.Errorf("%s: PaymentsEnabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeEnvCanonicalizesAliases(t *testing.T) {
	cases := map[string]string{
		"dev":         "development",
		"DEVELOPMENT": "development",
		"local":       "development",
		"prod":        "production",
		" Production": "production",
		"staging":     "staging",
		"testing":     "test",
		"custom":      "custom",
	}
	for in, want := range cases {
		if got := normalizeEnv(in); got != want {
			t.Errorf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
