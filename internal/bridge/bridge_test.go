package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"sfcc/internal/driver"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	collab, err := driver.DefaultCollaborators()
	if err != nil {
		t.Fatalf("DefaultCollaborators: %v", err)
	}
	c, err := driver.New(collab, driver.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &Server{Compiler: c, Jobs: 2}
}

func encodeRequests(t *testing.T, reqs ...Request) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		if err := enc.Encode(&r); err != nil {
			t.Fatal(err)
		}
	}
	return &buf
}

func decodeResponses(t *testing.T, r io.Reader) []Response {
	t.Helper()
	dec := msgpack.NewDecoder(r)
	var out []Response
	for {
		var resp Response
		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func TestServe(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: 1, Filename: "ok.vue", Source: "<template><div>{{ msg }}</div></template>\n<script>export default {}</script>\n"},
		Request{ID: 2, Filename: "bad.vue", Source: "<script>export default {</script>\n"},
		Request{ID: 3, Filename: "tpl.vue", Source: "<template><div>{{ oops</div></template>\n<script>export default {}</script>\n"},
	)
	var out bytes.Buffer
	if err := newServer(t).Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	resps := decodeResponses(t, &out)
	if len(resps) != 3 {
		t.Fatalf("responses = %d, want 3", len(resps))
	}

	ok := resps[0]
	if ok.ID != 1 || ok.Error != "" {
		t.Fatalf("ok response = %+v", ok)
	}
	if _, m, err := driver.SplitTrailer(ok.Code); err != nil || m == nil {
		t.Errorf("SplitTrailer: %v", err)
	}
	if !strings.HasPrefix(ok.Map, "{") {
		t.Errorf("Map = %q, want JSON object", ok.Map)
	}

	bad := resps[1]
	if bad.Error == "" || bad.Code != "" || len(bad.Diagnostics) == 0 || bad.Diagnostics[0].Severity != "ERROR" {
		t.Errorf("bad response = %+v", bad)
	}

	tpl := resps[2]
	if tpl.Error != "" || tpl.Code == "" || len(tpl.Diagnostics) == 0 {
		t.Errorf("template failure should be recoverable: %+v", tpl)
	}
}

func TestServeMalformedRequest(t *testing.T) {
	var in bytes.Buffer
	if err := msgpack.NewEncoder(&in).Encode(42); err != nil {
		t.Fatal(err)
	}
	err := newServer(t).Serve(context.Background(), &in, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "decode request") {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestServeWithoutCompiler(t *testing.T) {
	if err := (&Server{}).Serve(context.Background(), strings.NewReader(""), io.Discard); err == nil {
		t.Error("missing compiler accepted")
	}
}
