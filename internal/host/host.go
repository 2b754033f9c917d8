// ABOUTME: Processing-node graph API exposed by the audio rendering host
// ABOUTME: The core wires topology through this; DSP lives behind it
package host

import "fmt"

// NodeKind identifies a primitive processing node supplied by the host
type NodeKind int

const (
	NodeGain NodeKind = iota
	NodePan
	NodeFilter
	NodeConvolution
	NodeDelay
	NodeCompressor
)

func (k NodeKind) String() string {
	switch k {
	case NodeGain:
		return "gain"
	case NodePan:
		return "pan"
	case NodeFilter:
		return "filter"
	case NodeConvolution:
		return "convolution"
	case NodeDelay:
		return "delay"
	case NodeCompressor:
		return "compressor"
	default:
		return "unknown"
	}
}

// NodeID identifies a created node within the host graph
type NodeID string

// Graph is the wiring surface of the rendering host. The transport core
// creates nodes and connects them; it never processes samples itself.
// Calls are made from the session's command path, never the audio path.
type Graph interface {
	CreateNode(kind NodeKind) (NodeID, error)
	DestroyNode(id NodeID) error
	Connect(from, to NodeID) error
	Disconnect(from, to NodeID) error
	SetParam(id NodeID, name string, value float64) error
}

// ErrNoSuchNode is returned for operations naming an unknown node ID
type ErrNoSuchNode struct {
	ID NodeID
}

func (e ErrNoSuchNode) Error() string {
	return fmt.Sprintf("host: no such node %q", string(e.ID))
}
