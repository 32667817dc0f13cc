package sfc_test

import (
	"testing"

	"sfcc/internal/sfc"
	"sfcc/internal/testkit"
)

var invariantSeeds = []string{
	"",
	"<template><div/></template>",
	"<template>\n  <template v-if=\"a\"><b/></template>\n</template>\n<script>export default {}</script>",
	"<style module=\"a\">.x{}</style><style scoped>.y{}</style>",
	"<docs>\n# t\n</docs>\n<i18n src=\"./m.json\"/>",
	"text before <script>var s = '</scr' + 'ipt>'</script> after",
}

func TestParsedDescriptorsHoldInvariants(t *testing.T) {
	for _, src := range invariantSeeds {
		d, err := sfc.Parse(src, "a.vue")
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		if err := testkit.CheckDescriptorInvariants(d, src); err != nil {
			t.Errorf("Parse(%q): %v", src, err)
		}
	}
}

func FuzzParseInvariants(f *testing.F) {
	for _, src := range invariantSeeds {
		f.Add(src)
	}
	f.Fuzz(func(t *testing.T, src string) {
		d, err := sfc.Parse(src, "fuzz.vue")
		if err != nil {
			return
		}
		if err := testkit.CheckDescriptorInvariants(d, src); err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
	})
}
