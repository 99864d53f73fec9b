package middleware

import (
	"strings"
	"testing"
)

func TestBuildContentSecurityPolicyAllowsImageSources(t *testing.T) {
	policy := buildContentSecurityPolicy([]string{" https://cdn.sellusgenie.com ", ""})
	directives := parseContentSecurityPolicy(policy)

	imgSrc, ok := directives["img-src"]
	if !ok {
		t.Fatalf("expected img-src directive to be present in policy: %s", policy)
	}

	for _, required := range []string{"'self'", "data:", "https:", "https://cdn.sellusgenie.com"} {
		if _, allowed := imgSrc[required]; !allowed {
			t.Fatalf("expected img-src to allow %s, policy: %s", required, policy)
		}
	}
	if _, ok := directives["frame-ancestors"]["'none'"]; !ok {
		t.Fatalf("expected framing to be denied, policy: %s", policy)
	}
}

func parseContentSecurityPolicy(policy string) map[string]map[string]struct{} {
	result := make(map[string]map[string]struct{})

	for _, directive := range strings.Split(policy, ";") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		parts := strings.Fields(directive)
		if len(parts) == 0 {
			continue
		}

		name := parts[0]
		values := make(map[string]struct{}, len(parts)-1)
		for _, value := range parts[1:] {
			values[value] = struct{}{}
		}

		result[name] = values
	}

	return result
}
