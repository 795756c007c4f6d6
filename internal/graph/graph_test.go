package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	g := New("test")
	g.AddNode("a")

	assert.Contains(t, g.Nodes(), "a")
	assert.Equal(t, []string{}, g.Outgoing("a"))
	assert.Equal(t, []string{}, g.Incoming("a"))

	g.AddNode("a")
	assert.Equal(t, []string{"a"}, g.Nodes(), "AddNode must be idempotent")
}

func TestGraph_Connect(t *testing.T) {
	g := New("test")
	g.Connect("a", "b")

	assert.Equal(t, []string{"b"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a"}, g.Incoming("b"))
	assert.Equal(t, []string{}, g.Incoming("a"))
	assert.Equal(t, []string{}, g.Outgoing("b"))
	assert.Equal(t, []string{"a", "b"}, g.Nodes(), "endpoints are added as nodes")
}

func TestGraph_NeighboursNeverNil(t *testing.T) {
	g := New("test")
	g.AddNode("lonely")
	g.Connect("a", "b")

	for _, id := range []string{"lonely", "a", "b", "missing"} {
		assert.NotNil(t, g.Outgoing(id), "Outgoing(%q)", id)
		assert.NotNil(t, g.Incoming(id), "Incoming(%q)", id)
	}
	assert.NotNil(t, New("empty").Nodes())

	g.Connect("x", "y")
	g.Reroute("x", "z")
	assert.NotNil(t, g.Incoming("y"), "removing the only edge leaves an empty list")
}

func TestGraph_ConnectIdempotent(t *testing.T) {
	g := New("test")
	g.Connect("a", "b")
	g.Connect("a", "b")

	assert.Equal(t, []string{"b"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a"}, g.Incoming("b"))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_InsertionOrder(t *testing.T) {
	g := New("test")
	g.Connect("a", "z")
	g.Connect("a", "m")
	g.Connect("a", "b")
	g.Connect("y", "b")
	g.Connect("c", "b")

	assert.Equal(t, []string{"z", "m", "b"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a", "y", "c"}, g.Incoming("b"))

	first, ok := g.First("a")
	require.True(t, ok)
	assert.Equal(t, "z", first)

	firstIn, ok := g.FirstIncoming("b")
	require.True(t, ok)
	assert.Equal(t, "a", firstIn)
}

func TestGraph_UnknownNode(t *testing.T) {
	g := New("test")

	assert.Equal(t, []string{}, g.Outgoing("missing"))
	assert.Equal(t, []string{}, g.Incoming("missing"))
	assert.NotContains(t, g.Nodes(), "missing")

	_, ok := g.First("missing")
	assert.False(t, ok)
	_, ok = g.FirstIncoming("missing")
	assert.False(t, ok)
}

func TestGraph_OutgoingReturnsCopy(t *testing.T) {
	g := New("test")
	g.Connect("a", "b")

	out := g.Outgoing("a")
	out[0] = "mutated"
	assert.Equal(t, []string{"b"}, g.Outgoing("a"))
}

func TestGraph_SelfLoop(t *testing.T) {
	g := New("test")
	g.Connect("a", "a")

	assert.Equal(t, []string{"a"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a"}, g.Incoming("a"))
}

func TestGraph_Reroute(t *testing.T) {
	g := New("test")
	g.Connect("a", "c")
	g.Connect("b", "c")
	g.Reroute("c", "d")

	assert.Equal(t, []string{"d"}, g.Outgoing("a"))
	assert.Equal(t, []string{"d"}, g.Outgoing("b"))

	assert.Equal(t, []string{}, g.Outgoing("c"))
	assert.Equal(t, []string{}, g.Incoming("c"))
	assert.NotContains(t, g.Nodes(), "c")

	assert.Equal(t, []string{}, g.Outgoing("d"))
	assert.Equal(t, []string{"a", "b"}, g.Incoming("d"))
}

func TestGraph_RerouteDropsOutgoingEdges(t *testing.T) {
	g := New("test")
	g.Connect("a", "c")
	g.Connect("c", "e")
	g.Reroute("c", "d")

	assert.Equal(t, []string{}, g.Incoming("e"))
	assert.Equal(t, []string{"d"}, g.Outgoing("a"))
}

func TestGraph_RerouteMergesExistingEdges(t *testing.T) {
	g := New("test")
	g.Connect("a", "c")
	g.Connect("a", "d")
	g.Reroute("c", "d")

	assert.Equal(t, []string{"d"}, g.Outgoing("a"), "merged edge must not duplicate")
	assert.Equal(t, []string{"a"}, g.Incoming("d"))
}

func TestGraph_RerouteNoop(t *testing.T) {
	g := New("test")
	g.Connect("a", "b")

	g.Reroute("missing", "b")
	g.Reroute("b", "b")

	assert.Equal(t, []string{"b"}, g.Outgoing("a"))
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestGraph_RerouteSelfLoop(t *testing.T) {
	g := New("test")
	g.Connect("c", "c")
	g.Connect("a", "c")
	g.Reroute("c", "d")

	assert.NotContains(t, g.Nodes(), "c")
	assert.Equal(t, []string{"a"}, g.Incoming("d"))
	assert.Equal(t, []string{}, g.Outgoing("d"))
}
