package solver

import "testing"

func TestDetectTurnstileMarkers(t *testing.T) {
	bodies := []string{
		`<div class="cf-turnstile" data-sitekey="0xKEY"></div>`,
		`<script src="https://challenges.cloudflare.com/turnstile/v0/api.js"></script>`,
		`<html><body>Verifying you are human. This may take a few seconds.</body></html>`,
		`<script src="/cdn-cgi/challenge-platform/h/b/orchestrate"></script>`,
	}
	for _, body := range bodies {
		kind, ok := DetectChallenge(body, "https://example.gov/docket", nil)
		if !ok || kind != KindTurnstile {
			t.Errorf("Expected Turnstile detection for %q", body[:40])
		}
	}
}

func TestDetectRecaptchaMarkers(t *testing.T) {
	body := `<div class="g-recaptcha" data-sitekey="6LTESTKEY"></div>`
	kind, ok := DetectChallenge(body, "https://example.gov", nil)
	if !ok || kind != KindRecaptchaV2 {
		t.Errorf("Expected RecaptchaV2, got %s ok=%v", kind, ok)
	}
}

func TestDetectChallengeInURL(t *testing.T) {
	// Some interstitials redirect to a challenge route with an empty body.
	kind, ok := DetectChallenge("", "https://example.gov/cdn-cgi/challenge-platform/managed", nil)
	if !ok || kind != KindTurnstile {
		t.Error("Challenge route in the final URL should be detected")
	}
}

func TestDetectExtraMarkers(t *testing.T) {
	body := `<html><body>Request unsuccessful. Incapsula incident ID: 449</body></html>`
	if _, ok := DetectChallenge(body, "", nil); ok {
		t.Error("Site-specific marker should not match without registration")
	}
	kind, ok := DetectChallenge(body, "", []string{"request unsuccessful. incapsula"})
	if !ok || kind != KindTurnstile {
		t.Error("Registered extra marker should be detected")
	}
}

func TestDetectCleanPage(t *testing.T) {
	body := `<html><head><title>Docket 44280</title></head><body><h1>Rate Case</h1></body></html>`
	if _, ok := DetectChallenge(body, "https://psc.example.gov/docket/44280", nil); ok {
		t.Error("Clean page should not be flagged as challenged")
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	body := `<div class="CF-Turnstile"></div>`
	if _, ok := DetectChallenge(body, "", nil); !ok {
		t.Error("Detection should ignore case")
	}
}

func TestExtractSiteKeyFromAttribute(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"turnstile div",
			`<div class="cf-turnstile" data-sitekey="0xAAAA1111"></div>`,
			"0xAAAA1111",
		},
		{
			"recaptcha div",
			`<div class="g-recaptcha" data-sitekey="6LeTESTKEY"></div>`,
			"6LeTESTKEY",
		},
		{
			"bare data-sitekey",
			`<span data-sitekey="0xBBBB2222"></span>`,
			"0xBBBB2222",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSiteKey(tc.body); got != tc.want {
				t.Errorf("ExtractSiteKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractSiteKeyFromInlineScript(t *testing.T) {
	body := `<html><body>
<div id="widget"></div>
<script>
  turnstile.render('#widget', {
    sitekey: '0xSCRIPTKEY99',
    theme: 'light'
  });
</script>
</body></html>`
	if got := ExtractSiteKey(body); got != "0xSCRIPTKEY99" {
		t.Errorf("ExtractSiteKey = %q, want 0xSCRIPTKEY99", got)
	}
}

func TestExtractSiteKeyFromGrecaptchaScript(t *testing.T) {
	body := `<script>
  grecaptcha.render(document.getElementById('captcha'), {
    "sitekey": "6LeINLINE"
  });
</script>`
	if got := ExtractSiteKey(body); got != "6LeINLINE" {
		t.Errorf("ExtractSiteKey = %q, want 6LeINLINE", got)
	}
}

func TestExtractSiteKeySurvivesBrokenScripts(t *testing.T) {
	body := `<script>turnstile.render(missingVariable.foo, {sitekey: 'x'});</script>
<div class="cf-turnstile" data-sitekey="0xFALLBACK"></div>`
	if got := ExtractSiteKey(body); got != "0xFALLBACK" {
		t.Errorf("ExtractSiteKey = %q, want the attribute fallback", got)
	}
}

func TestExtractSiteKeyAbsent(t *testing.T) {
	if got := ExtractSiteKey(`<html><body>plain page</body></html>`); got != "" {
		t.Errorf("Expected empty key, got %q", got)
	}
}
