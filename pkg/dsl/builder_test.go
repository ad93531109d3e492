package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/weave/pkg/domain"
)

func TestBuilder_Countdown(t *testing.T) {
	b := New("")

	open := b.Add("WhileLoopOpen", "open").Set("initial_value0", 3)
	sub := b.Add("IntMath", "sub").
		Set("operation", "subtract").
		Set("a", open.Out(1)).
		Set("b", 1)
	cond := b.Add("ToBool", "cond").Set("value", sub.Out(0))
	b.Add("WhileLoopClose", "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))

	p, err := b.BuildPrompt("countdown")
	if err != nil {
		t.Fatalf("BuildPrompt() failed: %v", err)
	}

	want := []string{"open", "sub", "cond", "close"}
	got := p.IDs()
	if len(got) != len(want) {
		t.Fatalf("Expected ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected id %d to be %s, got %s", i, want[i], got[i])
		}
	}

	closeNode, _ := p.Node("close")
	fc := closeNode.Inputs["flow_control"]
	if !fc.IsLink() || fc.Link.From != "open" || fc.Link.Output != 0 {
		t.Errorf("Expected flow_control linked to open[0], got %+v", fc)
	}
	subNode, _ := p.Node("sub")
	if subNode.Inputs["b"].IsLink() || subNode.Inputs["b"].Value != 1 {
		t.Errorf("Expected literal b=1, got %+v", subNode.Inputs["b"])
	}
}

func TestBuilder_PrefixAndFinalize(t *testing.T) {
	b := New("x7")
	n := b.Add("WhileLoopClose", "Recurse").Display("close")
	again := b.Add("Other", "Recurse")
	if again != n {
		t.Fatal("Add with an existing key must return the existing builder")
	}
	if n.ID() != "x7.Recurse" || n.Key() != "Recurse" {
		t.Errorf("unexpected id/key %s/%s", n.ID(), n.Key())
	}
	if b.ID("0") != "x7.0" {
		t.Errorf("ID(0) = %s", b.ID("0"))
	}

	exp := b.Finalize()
	if len(exp.Nodes) != 1 || exp.Nodes[0].Display() != "close" || exp.Nodes[0].Class != "WhileLoopClose" {
		t.Errorf("unexpected expansion %+v", exp.Nodes)
	}
	if _, ok := b.Lookup("Recurse"); !ok {
		t.Error("Lookup(Recurse) failed")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d", b.Len())
	}
}

func TestNodeBuilder_SetForms(t *testing.T) {
	n := New("").Add("X", "n")
	n.Set("ref", domain.Ref{Node: "a", Output: 2})
	n.Set("link", domain.Link{From: "b", Output: 1})
	n.Set("input", domain.Linked("c", 0))
	n.Set("literal_input", domain.Literal("v"))
	n.Set("nil", nil)
	n.Set("nil_link", (*domain.Link)(nil))

	in := n.Build().Inputs
	if !in["ref"].IsLink() || in["ref"].Link.From != "a" || in["ref"].Link.Output != 2 {
		t.Errorf("ref: %+v", in["ref"])
	}
	if !in["link"].IsLink() || in["link"].Link.From != "b" {
		t.Errorf("link: %+v", in["link"])
	}
	if !in["input"].IsLink() || in["input"].Link.From != "c" {
		t.Errorf("input: %+v", in["input"])
	}
	if in["literal_input"].IsLink() || in["literal_input"].Value != "v" {
		t.Errorf("literal_input: %+v", in["literal_input"])
	}
	if _, ok := in["nil"]; ok {
		t.Errorf("nil should leave the input unset: %+v", in["nil"])
	}
	if _, ok := in["nil_link"]; ok {
		t.Errorf("nil_link should leave the input unset: %+v", in["nil_link"])
	}

	n.Set("literal_input", nil)
	if _, ok := n.Build().Inputs["literal_input"]; ok {
		t.Error("Setting nil should remove an existing input")
	}
}

func TestBuilder_DuplicateIDsAcrossBuilders(t *testing.T) {
	b := New("")
	b.Add("X", "a")
	p, err := b.BuildPrompt("p")
	if err != nil {
		t.Fatal(err)
	}
	err = p.Add(New("").Add("X", "a").Build())
	if !errors.Is(err, domain.ErrDuplicateNode) {
		t.Errorf("Expected ErrDuplicateNode, got %v", err)
	}
}
