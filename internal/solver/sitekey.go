package solver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
)

// ExtractSiteKey finds the challenge widget's site key in page content.
//
// Most sites declare it as a data-sitekey attribute on the widget container.
// A few render the widget from inline JavaScript instead; for those the
// inline scripts are executed in a sandboxed VM with stubbed turnstile and
// grecaptcha objects that capture the key passed to render().
func ExtractSiteKey(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	if key := attrSiteKey(doc); key != "" {
		return key
	}
	return scriptSiteKey(doc)
}

func attrSiteKey(doc *goquery.Document) string {
	var key string
	doc.Find(".cf-turnstile, .g-recaptcha, [data-sitekey]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if v, ok := sel.Attr("data-sitekey"); ok && v != "" {
			key = v
			return false
		}
		return true
	})
	return key
}

// scriptSiteKey runs inline scripts in a goja VM. Scripts that touch missing
// DOM APIs fail harmlessly; all we want is the sitekey argument of a
// turnstile.render / grecaptcha.render call.
func scriptSiteKey(doc *goquery.Document) string {
	var captured string

	vm := goja.New()

	capture := func(call goja.FunctionCall) goja.Value {
		// render(container, params) — the key lives in params
		for _, arg := range call.Arguments {
			obj := arg.ToObject(vm)
			if obj == nil {
				continue
			}
			if v := obj.Get("sitekey"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
				if s := v.String(); s != "" {
					captured = s
				}
			}
		}
		return goja.Undefined()
	}

	widget := map[string]interface{}{
		"render":  capture,
		"execute": capture,
		"ready":   func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
	}

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("turnstile", widget)
	vm.Set("grecaptcha", widget)
	vm.Set("document", map[string]interface{}{
		"getElementById":   func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
		"querySelector":    func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
		"addEventListener": func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
	})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
		"error": func(call goja.FunctionCall) goja.Value { return goja.Undefined() },
	})

	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if _, external := sel.Attr("src"); external {
			return true
		}
		src := sel.Text()
		if src == "" || (!strings.Contains(src, "turnstile") && !strings.Contains(src, "grecaptcha")) {
			return true
		}
		// Most inline scripts throw on the first missing DOM call; errors
		// are expected and ignored.
		func() {
			defer func() { recover() }()
			vm.RunString(src)
		}()
		return captured == ""
	})

	return captured
}
