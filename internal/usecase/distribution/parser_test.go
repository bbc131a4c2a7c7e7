package distribution

import (
	"testing"

	"wa-distribution-bot/internal/domain"
)

func TestParseRequest(t *testing.T) {
	cases := []struct {
		input    string
		expected domain.DistributionRequest
		ok       bool
	}{
		{"john.doe@company.com-android", domain.DistributionRequest{Email: "john.doe@company.com", Platform: "android"}, true},
		{"JOHN@X.COM-IOS", domain.DistributionRequest{Email: "john@x.com", Platform: "ios"}, true},
		{"  a@b.com-android  ", domain.DistributionRequest{Email: "a@b.com", Platform: "android"}, true},
		{"not-an-email-android", domain.DistributionRequest{}, false},
		{"a@b.com-windows", domain.DistributionRequest{}, false},
		{"a@b.com", domain.DistributionRequest{}, false},
		{"пришлите сборку a@b.com-android", domain.DistributionRequest{}, false},
		{"a@b.com-android и ещё текст", domain.DistributionRequest{}, false},
		{"", domain.DistributionRequest{}, false},
	}
	for _, tc := range cases {
		req, ok := ParseRequest(tc.input)
		if ok != tc.ok {
			t.Fatalf("%q: ожидали ok=%v, получили %v", tc.input, tc.ok, ok)
		}
		if req != tc.expected {
			t.Fatalf("%q: ожидали %+v, получили %+v", tc.input, tc.expected, req)
		}
	}
}
