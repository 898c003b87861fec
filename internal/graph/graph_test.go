package graph

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hargabyte/stepgraph/internal/step"
)

// mustBuild parses a DATA-section fragment and builds its graph.
func mustBuild(t *testing.T, src string) *Graph {
	t.Helper()
	f, err := step.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, err := Build(f.Records, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func TestBuild_PointAndLine(t *testing.T) {
	g := mustBuild(t, "#1=POINT('P1',(0.,0.,0.));#2=LINE('L',#1,#1);")

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 entities, got %d", g.NodeCount())
	}

	fwd := g.Forward(2)
	if len(fwd) != 2 {
		t.Fatalf("expected #2 to reference #1 twice, got %d edges", len(fwd))
	}
	var labels []string
	for _, e := range fwd {
		if e.To != 1 {
			t.Errorf("expected edge to #1, got #%d", e.To)
		}
		labels = append(labels, e.Label)
	}
	if diff := cmp.Diff([]string{"2", "3"}, labels); diff != "" {
		t.Errorf("edge labels mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{2}, g.Referrers(1)); diff != "" {
		t.Errorf("referrers of #1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, g.References(2)); diff != "" {
		t.Errorf("references of #2 mismatch (-want +got):\n%s", diff)
	}
	if len(g.Backward(1)) != 2 {
		t.Errorf("expected one backward entry per attribute position, got %d", len(g.Backward(1)))
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestBuild_EveryIDOnce(t *testing.T) {
	g := mustBuild(t, "#10=A();#3=B(#10);#7=C((#3,#10));")

	if diff := cmp.Diff([]int{10, 3, 7}, g.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, id := range g.IDs() {
		rec, ok := g.Get(id)
		if !ok {
			t.Fatalf("Get(%d) not found", id)
		}
		if rec.ID != id {
			t.Errorf("Get(%d) returned record #%d", id, rec.ID)
		}
	}
	if _, ok := g.Get(99); ok {
		t.Error("Get(99) should not be found")
	}
}

func TestBuild_AdjacencySymmetry(t *testing.T) {
	g := mustBuild(t, `#1=A(#2,(#3,(#4)),IFCREF(#2));
#2=B(#1);
#3=(C(#4)D(#1));
#4=E($,*);`)

	for _, id := range g.IDs() {
		for _, e := range g.Forward(id) {
			found := false
			for _, back := range g.Backward(e.To) {
				if back.From == id && back.Label == e.Label {
					found = true
				}
			}
			if !found {
				t.Errorf("edge #%d -> #%d (%s) missing from backward adjacency", id, e.To, e.Label)
			}
		}
	}

	labels := map[string]bool{}
	for _, e := range g.Forward(3) {
		labels[e.Label] = true
	}
	if !labels["C:1"] || !labels["D:1"] {
		t.Errorf("complex instance labels should carry the segment type, got %v", labels)
	}
}

func TestBuild_ForwardReference(t *testing.T) {
	g := mustBuild(t, "#1=A(#5);#2=B();#5=C(#2);")

	if len(g.Dangling()) != 0 {
		t.Fatalf("expected no dangling references, got %v", g.Dangling())
	}
	if diff := cmp.Diff([]int{5}, g.References(1)); diff != "" {
		t.Errorf("references of #1 mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Duplicate(t *testing.T) {
	f, err := step.Parse([]byte("#1=A();\n#1=B();"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Build(f.Records, Options{})

	var dup *DuplicateEntityError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateEntityError, got %v", err)
	}
	if dup.ID != 1 || dup.First.Line != 1 || dup.Second.Line != 2 {
		t.Errorf("unexpected error fields: %+v", dup)
	}
	if got := dup.Report().Type; got != "duplicate_entity" {
		t.Errorf("expected report type duplicate_entity, got %q", got)
	}
}

func TestBuild_DanglingReference(t *testing.T) {
	f, err := step.Parse([]byte("#1=A(#9,#2);#2=B();"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	g, err := Build(f.Records, Options{Logger: logger})
	if err != nil {
		t.Fatalf("dangling references must not fail the build: %v", err)
	}

	dangling := g.Dangling()
	if len(dangling) != 1 {
		t.Fatalf("expected 1 dangling reference, got %d", len(dangling))
	}
	if dangling[0].From != 1 || dangling[0].To != 9 || dangling[0].Label != "1" {
		t.Errorf("unexpected dangling reference: %+v", dangling[0])
	}
	if g.EdgeCount() != 1 {
		t.Errorf("dangling edge should be omitted, got %d edges", g.EdgeCount())
	}

	out := buf.String()
	if !strings.Contains(out, "dangling reference") || !strings.Contains(out, "to=9") {
		t.Errorf("expected a warning log record, got %q", out)
	}
}

func TestFindCycles(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantCycle bool
		want      []int
	}{
		{"acyclic", "#1=A(#2);#2=B(#3);#3=C();", false, nil},
		{"two-cycle", "#1=A(#2);#2=B(#1);", true, []int{1, 2, 1}},
		{"self reference", "#1=A(#1);", true, []int{1, 1}},
		{"longer cycle", "#1=A(#2);#2=B(#3);#3=C(#1);#4=D(#1);", true, []int{1, 2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, tt.src)
			has, cycle := g.FindCycles()
			if has != tt.wantCycle {
				t.Fatalf("FindCycles() = %v, want %v", has, tt.wantCycle)
			}
			if diff := cmp.Diff(tt.want, cycle); diff != "" {
				t.Errorf("cycle mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// fanOut builds #1=REL((#2,...,#n+1)) followed by n leaves. When closing is
// set the last leaf references #1.
func fanOut(n int, closing bool) string {
	var b strings.Builder
	b.WriteString("#1=REL((")
	for i := 2; i <= n+1; i++ {
		if i > 2 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "#%d", i)
	}
	b.WriteString("));")
	for i := 2; i <= n+1; i++ {
		if closing && i == n+1 {
			fmt.Fprintf(&b, "#%d=LEAF(#1);", i)
			continue
		}
		fmt.Fprintf(&b, "#%d=LEAF();", i)
	}
	return b.String()
}

func TestFindCyclesWideFanOut(t *testing.T) {
	const n = 20000

	g := mustBuild(t, fanOut(n, false))
	start := time.Now()
	has, cycle := g.FindCycles()
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("FindCycles over %d references took %v", n, elapsed)
	}
	if has || cycle != nil {
		t.Fatalf("FindCycles() = %v, %v; want no cycle", has, cycle)
	}

	g = mustBuild(t, fanOut(n, true))
	has, cycle = g.FindCycles()
	if !has {
		t.Fatal("FindCycles() = false, want the cycle through the last leaf")
	}
	if diff := cmp.Diff([]int{1, n + 1, 1}, cycle); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestShortestPath(t *testing.T) {
	g := mustBuild(t, "#1=A(#2);#2=B(#3);#3=C();#4=D(#2);#5=E(#4);")

	if diff := cmp.Diff([]int{5, 4, 2, 3}, g.ShortestPath(5, 3, Out)); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if p := g.ShortestPath(3, 5, Out); p != nil {
		t.Errorf("expected no forward path from #3 to #5, got %v", p)
	}
	if diff := cmp.Diff([]int{3, 2, 4, 5}, g.ShortestPath(3, 5, In)); diff != "" {
		t.Errorf("reverse path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 4}, g.ShortestPath(1, 4, Both)); diff != "" {
		t.Errorf("undirected path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, g.ShortestPath(3, 3, Out)); diff != "" {
		t.Errorf("trivial path mismatch (-want +got):\n%s", diff)
	}
}

func TestBFS_Cycle(t *testing.T) {
	g := mustBuild(t, "#1=A(#2);#2=B(#3);#3=C(#1);")

	ids, depth := g.BFS(1, Out, -1)
	if diff := cmp.Diff([]int{1, 2, 3}, ids); diff != "" {
		t.Errorf("bfs order mismatch (-want +got):\n%s", diff)
	}
	if depth[3] != 2 {
		t.Errorf("expected #3 at depth 2, got %d", depth[3])
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"#42", 42, false},
		{" #7 ", 7, false},
		{"0", 0, false},
		{"-3", 0, true},
		{"abc", 0, true},
		{"#", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"out": Out, "in": In, "both": Both, "": Both} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for invalid direction")
	}
}

func TestTypeCountsAndFind(t *testing.T) {
	g := mustBuild(t, "#1=IFCWALL();#2=IFCWALL();#3=IFCSLAB();#4=(A()B());")

	want := map[string]int{"IFCWALL": 2, "IFCSLAB": 1, "A+B": 1}
	if diff := cmp.Diff(want, g.TypeCounts()); diff != "" {
		t.Errorf("type counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, g.FindByType("wall")); diff != "" {
		t.Errorf("find mismatch (-want +got):\n%s", diff)
	}
}
