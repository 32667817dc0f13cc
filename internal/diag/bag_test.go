package diag

import (
	"sync"
	"testing"

	"sfcc/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevInfo, TplForWithoutKey, source.Span{}, "tip")) {
		t.Fatal("first Add should succeed")
	}
	if b.HasErrors() {
		t.Error("info diagnostic must not count as error")
	}
	b.Add(NewError(TplUnterminatedInterp, source.Span{Start: 1, End: 2}, "bad"))
	if b.Add(NewError(TplNoRoot, source.Span{}, "dropped")) {
		t.Error("Add past the limit should report false")
	}
	if b.Len() != 2 || !b.HasErrors() {
		t.Errorf("Len=%d HasErrors=%v", b.Len(), b.HasErrors())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{File: "b.vue", Code: TplNoRoot, Primary: source.Span{Start: 1}})
	b.Add(Diagnostic{File: "a.vue", Code: TplNoRoot, Primary: source.Span{Start: 5}, Severity: SevInfo})
	b.Add(Diagnostic{File: "a.vue", Code: TplBadFor, Primary: source.Span{Start: 5}, Severity: SevError})
	b.Add(Diagnostic{File: "b.vue", Code: TplNoRoot, Primary: source.Span{Start: 1}})
	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("Dedup left %d items, want 3", b.Len())
	}
	b.Sort()
	items := b.Items()
	if items[0].Code != TplBadFor || items[1].Code != TplNoRoot || items[2].File != "b.vue" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		SfcDuplicateScript:    "SFC1002",
		TplUnterminatedInterp: "TPL2001",
		ScrTranspile:          "SCR3001",
		StyUnsupported:        "STY4001",
		CusNoHandler:          "CUS5001",
		UnknownCode:           "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if TplCompileFailed.Title() != "Template compilation failed" {
		t.Errorf("Title = %q", TplCompileFailed.Title())
	}
}

func TestReportBuilderLocatesAndEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	r := &BagReporter{Bag: bag}
	doc := source.NewDocument("x.vue", "<template>\n<div>{{</div>\n</template>")
	b := ReportError(r, TplUnterminatedInterp, source.Span{Start: 6, End: 8}, "unterminated").In(doc, 10)
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Emit delivered %d diagnostics, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.File != "x.vue" || d.Pos.Line != 2 || d.Pos.Col != 6 {
		t.Errorf("located diagnostic = %+v", d)
	}
}

func TestMultiReporterConcurrent(t *testing.T) {
	a, b := NewBag(100), NewBag(100)
	m := MultiReporter{&BagReporter{Bag: a}, nil, &BagReporter{Bag: b}}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Report(New(SevInfo, TplInfo, source.Span{}, "x"))
		}()
	}
	wg.Wait()
	if a.Len() != 20 || b.Len() != 20 {
		t.Errorf("fan-out lengths = %d, %d", a.Len(), b.Len())
	}
}

func TestBagMergeAndDropped(t *testing.T) {
	full := NewBag(1)
	full.Add(NewError(TplNoRoot, source.Span{}, "kept"))
	full.Add(NewError(TplNoRoot, source.Span{}, "over"))
	if full.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", full.Dropped())
	}

	into := NewBag(1)
	into.Add(NewError(TplBadFor, source.Span{}, "first"))
	into.Merge(full)
	if into.Len() != 2 || into.Dropped() != 1 {
		t.Errorf("after Merge Len=%d Dropped=%d, want 2 and 1", into.Len(), into.Dropped())
	}
	into.Merge(nil)
}
