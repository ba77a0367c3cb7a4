package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

type fakeImage struct {
	data []byte
}

func (f *fakeImage) ImageFormat() string { return "png" }
func (f *fakeImage) ImageByteSize() int  { return len(f.data) }

type panicStringer struct{ n int }

func (p panicStringer) String() string { panic("boom") }

// marshal encodes v the way the event log does, without HTML escaping, so
// markers such as <max-depth> compare literally.
func marshal(t *testing.T, v Value) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func TestSerializeScalars(t *testing.T) {
	s := Serializer{MaxString: 300}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"negative int8", int8(-3), "-3"},
		{"uint", uint16(7), "7"},
		{"float", 1.5, "1.5"},
		{"float32", float32(0.25), "0.25"},
		{"string", "hello", `"hello"`},
		{"nil interface", fmt.Stringer(nil), "null"},
		{"nan", math.NaN(), `"NaN"`},
		{"inf", math.Inf(1), `"+Inf"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshal(t, s.Serialize(tt.in)); got != tt.want {
				t.Errorf("Serialize(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSerializeStringTruncation(t *testing.T) {
	s := Serializer{MaxString: 300}

	in := strings.Repeat("a", 350)
	got := s.Serialize(in)
	want := strings.Repeat("a", 300) + "...<truncated 50 chars>"
	if got.Kind() != KindString || got.Str() != want {
		t.Errorf("Serialize(350 chars) = %q, want %q", got.Str(), want)
	}

	for _, n := range []int{0, 1, 299, 300} {
		in := strings.Repeat("b", n)
		if got := s.Serialize(in).Str(); got != in {
			t.Errorf("string of %d chars changed to %q", n, got)
		}
	}
}

func TestSerializeStringTruncationCountsCharacters(t *testing.T) {
	s := Serializer{MaxString: 32}
	in := strings.Repeat("日", 40)
	want := strings.Repeat("日", 32) + "...<truncated 8 chars>"
	if got := s.Serialize(in).Str(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := s.Serialize(strings.Repeat("日", 32)).Str(); got != strings.Repeat("日", 32) {
		t.Errorf("32 multi-byte characters should pass through, got %q", got)
	}
}

func TestSerializeDefaultLimit(t *testing.T) {
	got := Serializer{}.Serialize(strings.Repeat("x", DefaultMaxString+1)).Str()
	if !strings.HasSuffix(got, "...<truncated 1 chars>") {
		t.Errorf("zero MaxString should use the default limit, got suffix %q", got[len(got)-30:])
	}
}

func TestSerializeDepthCap(t *testing.T) {
	s := Serializer{MaxString: 300}
	nested := []any{[]any{[]any{[]any{[]any{1}}}}}

	got := marshal(t, s.Serialize(nested))
	want := `[[[["<max-depth>"]]]]`
	if got != want {
		t.Errorf("Serialize(5 levels) = %s, want %s", got, want)
	}

	maps := map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": "deep"}}}}
	got = marshal(t, s.Serialize(maps))
	want = `{"a":{"b":{"c":{"d":"<max-depth>"}}}}`
	if got != want {
		t.Errorf("Serialize(nested maps) = %s, want %s", got, want)
	}
}

func TestSerializeSequenceCap(t *testing.T) {
	s := Serializer{MaxString: 300}
	in := make([]int, 15)
	for i := range in {
		in[i] = i
	}
	got := s.Serialize(in)
	if got.Kind() != KindSequence {
		t.Fatalf("kind = %v, want sequence", got.Kind())
	}
	items := got.Items()
	if len(items) != 11 {
		t.Fatalf("len = %d, want 10 elements plus marker", len(items))
	}
	for i := 0; i < 10; i++ {
		if items[i].Interface() != int64(i) {
			t.Errorf("item %d = %v", i, items[i].Interface())
		}
	}
	if items[10].Str() != "...<5 more>" {
		t.Errorf("marker = %q, want ...<5 more>", items[10].Str())
	}

	short := s.Serialize([3]string{"a", "b", "c"})
	if len(short.Items()) != 3 {
		t.Errorf("array of 3 should keep 3 items, got %d", len(short.Items()))
	}
}

func TestSerializeMappingCap(t *testing.T) {
	s := Serializer{MaxString: 300}
	in := make(map[string]int, 25)
	for i := 0; i < 25; i++ {
		in[fmt.Sprintf("k%02d", i)] = i
	}
	got := s.Serialize(in)
	fields := got.Fields()
	if len(fields) != 21 {
		t.Fatalf("len = %d, want 20 entries plus marker", len(fields))
	}
	for i := 0; i < 20; i++ {
		if want := fmt.Sprintf("k%02d", i); fields[i].Key != want {
			t.Errorf("field %d = %q, want %q", i, fields[i].Key, want)
		}
	}
	last := fields[20]
	if last.Key != "..." || last.Value.Str() != "<5 more keys>" {
		t.Errorf("marker = %q: %q", last.Key, last.Value.Str())
	}
}

func TestSerializeMapKeysStringified(t *testing.T) {
	got := marshal(t, Serializer{}.Serialize(map[int]bool{2: true, 1: false}))
	if got != `{"1":false,"2":true}` {
		t.Errorf("got %s", got)
	}
}

func TestSerializeBytesAndImages(t *testing.T) {
	s := Serializer{MaxString: 300}
	if got := marshal(t, s.Serialize(make([]byte, 1024))); got != `{"kind":"bytes","length":1024}` {
		t.Errorf("bytes = %s", got)
	}
	if got := marshal(t, s.Serialize(json.RawMessage(`{"x":1}`))); got != `{"kind":"bytes","length":7}` {
		t.Errorf("raw message = %s", got)
	}
	if got := marshal(t, s.Serialize([4]byte{})); got != `{"kind":"bytes","length":4}` {
		t.Errorf("byte array = %s", got)
	}
	img := &fakeImage{data: make([]byte, 2048)}
	if got := marshal(t, s.Serialize(img)); got != `{"kind":"image","format":"png","byteSize":2048}` {
		t.Errorf("image = %s", got)
	}
	var nilImg *fakeImage
	if got := marshal(t, s.Serialize(nilImg)); got != "null" {
		t.Errorf("nil image = %s", got)
	}
}

func TestSerializeStructs(t *testing.T) {
	type inner struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	type result struct {
		Success bool   `json:"success"`
		Action  string `json:"action,omitempty"`
		From    inner  `json:"from"`
		Secret  string `json:"-"`
		Plain   int
		hidden  int
	}
	in := result{Success: true, Action: "drag", From: inner{1, 2}, Secret: "s", Plain: 3, hidden: 4}
	got := marshal(t, Serializer{}.Serialize(in))
	want := `{"success":true,"action":"drag","from":{"x":1,"y":2},"Plain":3}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if got := marshal(t, Serializer{}.Serialize(&in)); got != want {
		t.Errorf("pointer to struct = %s, want %s", got, want)
	}
}

func TestSerializePointers(t *testing.T) {
	s := Serializer{}
	v := 7
	p1 := &v
	p2 := &p1
	if got := marshal(t, s.Serialize(p2)); got != "7" {
		t.Errorf("**int = %s, want 7", got)
	}
	var nilPtr *int
	if got := marshal(t, s.Serialize(nilPtr)); got != "null" {
		t.Errorf("nil pointer = %s", got)
	}

	p3 := &p2
	p4 := &p3
	p5 := &p4
	p6 := &p5
	p7 := &p6
	p8 := &p7
	if got := marshal(t, s.Serialize(p8)); got != "7" {
		t.Errorf("eight-pointer chain = %s, want 7", got)
	}
	p9 := &p8
	if got := s.Serialize(p9); got.Kind() != KindOpaque {
		t.Errorf("nine-pointer chain kind = %v, want opaque", got.Kind())
	}
}

func TestSerializeFallbacks(t *testing.T) {
	s := Serializer{MaxString: 40}

	if got := s.Serialize(errors.New("no display")); got.Kind() != KindString || got.Str() != "no display" {
		t.Errorf("error = %v %q", got.Kind(), got.Str())
	}
	if got := s.Serialize(func() {}); got.Kind() != KindOpaque {
		t.Errorf("func kind = %v, want opaque", got.Kind())
	}
	if got := s.Serialize(make(chan int)); got.Kind() != KindOpaque {
		t.Errorf("chan kind = %v, want opaque", got.Kind())
	}
	if got := s.Serialize(complex(1, 2)); got.Kind() != KindOpaque || got.Str() != "(1+2i)" {
		t.Errorf("complex = %v %q", got.Kind(), got.Str())
	}
	if got := s.Serialize(panicStringer{}); got.Kind() != KindOpaque {
		t.Errorf("panicking stringer kind = %v, want opaque", got.Kind())
	}
}

func TestSerializeRedactsBeforeTruncating(t *testing.T) {
	s := Serializer{MaxString: 300, Redactor: NewRedactor()}
	got := s.Serialize("curl -H 'password=hunter2hunter2' https://example.com").Str()
	if strings.Contains(got, "hunter2hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.Contains(got, RedactedText) {
		t.Errorf("expected redaction marker in %q", got)
	}
}

func TestSerializeTruncationCountsRedactedText(t *testing.T) {
	s := Serializer{MaxString: 32, Redactor: NewRedactor()}
	in := "password=hunter2hunter2 " + strings.Repeat("x", 40)
	want := RedactedText + " " + strings.Repeat("x", 21) + "...<truncated 19 chars>"
	if got := s.Serialize(in).Str(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValueMarshalKeepsFieldOrder(t *testing.T) {
	v := Mapping(
		Field{Key: "z", Value: Int(1)},
		Field{Key: "a", Value: Sequence(String("<max-depth>"), Null())},
	)
	if got := marshal(t, v); got != `{"z":1,"a":["<max-depth>",null]}` {
		t.Errorf("got %s", got)
	}
	if _, ok := v.Get("a"); !ok {
		t.Error("Get(a) should find the field")
	}
}
