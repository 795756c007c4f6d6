package testutil

import "github.com/roach88/srcid/internal/ir"

// Script returns a scriptSource record.
func Script(id, url, hash string, produced ...string) ir.Source {
	return ir.NewSource(id, ir.KindScriptSource, url, hash, produced...)
}

// HTML returns an html document that embeds the given inline scripts.
func HTML(id, url string, inline ...string) ir.Source {
	return ir.NewSource(id, ir.KindHTML, url, "", inline...)
}

// Inline returns an inlineScript record.
func Inline(id, url string) ir.Source {
	return ir.NewSource(id, ir.KindInlineScript, url, "")
}

// Original returns a sourceMapped record that maps onto the given bundles.
func Original(id, url string, bundles ...string) ir.Source {
	return ir.NewSource(id, ir.KindSourceMapped, url, "", bundles...)
}

// Pretty returns a prettyPrinted copy of base.
func Pretty(id, url, base string) ir.Source {
	return ir.NewPrettyPrinted(id, url, base)
}

// BundleChain returns the canonical three-record fixture: a bundle "1",
// its authored original "o1" and a pretty-printed copy "pp1" of the bundle.
func BundleChain() []ir.Source {
	return []ir.Source{
		Script("1", "/bundle.js", "h"),
		Original("o1", "/src/app.ts", "1"),
		Pretty("pp1", "/bundle.js", "1"),
	}
}
