package uuid

import (
	guuid "github.com/google/uuid"

	"github.com/rustyeddy/sortid/lifecycle"
	"github.com/rustyeddy/sortid/random"
)

// NodeMode selects where the node id of version 1 and 6 UUIDs comes from.
type NodeMode int

const (
	// NodeSystem uses a hardware address, or a random id when none is found.
	NodeSystem NodeMode = iota
	NodeRandom
)

var nodeMu = lifecycle.NewMutex()

var (
	nodeID  [6]byte
	nodeSet bool
)

func generateNode(mode NodeMode) [6]byte {
	var id [6]byte
	if mode == NodeSystem && guuid.SetNodeInterface("") {
		copy(id[:], guuid.NodeID())
		if guuid.NodeInterface() == "random" {
			id[0] |= 0x01
		}
		return id
	}
	_, _ = random.Default().Read(id[:])
	// Multicast bit: never a real hardware address.
	id[0] |= 0x01
	return id
}

// SetNodeMode regenerates the process node id and returns it.
func SetNodeMode(mode NodeMode) [6]byte {
	id := generateNode(mode)
	SetNodeID(id)
	return id
}

func SetNodeID(id [6]byte) {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	nodeID = id
	nodeSet = true
}

// NodeID returns the node id, detecting it on first use.
func NodeID() [6]byte {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	if !nodeSet {
		nodeID = generateNode(NodeSystem)
		nodeSet = true
	}
	return nodeID
}
